package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/speclink/internal/ast"
)

// ErrorCode identifies a class of diagnostics.
type ErrorCode string

const (
	// ErrL001: an import or instance names a module that does not exist.
	ErrL001 ErrorCode = "L001"
	// ErrL002: an import or override names a definition the module lacks.
	ErrL002 ErrorCode = "L002"

	// ErrI001: a reference has no table entry during flattening.
	ErrI001 ErrorCode = "I001"
	// ErrI002: a prototype still contains an instance.
	ErrI002 ErrorCode = "I002"
	// ErrI003: an instance names a prototype that was not supplied.
	ErrI003 ErrorCode = "I003"
)

// ResolutionError is one unresolved reference found while resolving the
// imports and instances of a module.
type ResolutionError struct {
	Code ErrorCode
	// Module is the module whose declaration failed to resolve.
	Module string
	// ModuleName is set when a module could not be found.
	ModuleName string
	// DefName is set when a definition could not be found in Context.
	DefName string
	// Context is the module DefName was looked up in.
	Context string
	// Reference is the id of the offending declaration or override.
	Reference uint64
	// Location is filled from a source map when one is available.
	Location *ast.Location
}

// NewUnresolvedModule reports an import or instance of a missing module.
func NewUnresolvedModule(module, moduleName string, ref uint64) *ResolutionError {
	return &ResolutionError{Code: ErrL001, Module: module, ModuleName: moduleName, Reference: ref}
}

// NewUnresolvedDefinition reports a name missing from the module it was looked up in.
func NewUnresolvedDefinition(module, defName, context string, ref uint64) *ResolutionError {
	return &ResolutionError{Code: ErrL002, Module: module, DefName: defName, Context: context, Reference: ref}
}

func (e *ResolutionError) Error() string {
	var msg string
	switch {
	case e.ModuleName != "":
		msg = fmt.Sprintf("module not found: %s", e.ModuleName)
	case e.DefName != "":
		msg = fmt.Sprintf("name '%s' not found in module %s", e.DefName, e.Context)
	default:
		msg = "unresolved reference"
	}
	if e.Location != nil {
		return fmt.Sprintf("%s: %s: %s", e.Location, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s (in module %s)", e.Code, msg, e.Module)
}

// ResolutionErrors is every unresolved reference of a resolution run, in
// document order.
type ResolutionErrors []*ResolutionError

func (es ResolutionErrors) Error() string {
	switch len(es) {
	case 0:
		return "no resolution errors"
	case 1:
		return es[0].Error()
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d resolution errors:\n%s", len(es), strings.Join(msgs, "\n"))
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (es ResolutionErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// WithLocations fills Location of every error whose reference is in sm.
func (es ResolutionErrors) WithLocations(sm ast.SourceMap) ResolutionErrors {
	for _, e := range es {
		if loc, ok := sm.Lookup(e.Reference); ok {
			e.Location = &loc
		}
	}
	return es
}

// AsResolutionErrors extracts the resolution error list from err, if any.
func AsResolutionErrors(err error) (ResolutionErrors, bool) {
	var es ResolutionErrors
	if errors.As(err, &es) {
		return es, true
	}
	return nil, false
}
