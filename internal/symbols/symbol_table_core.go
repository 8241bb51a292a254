package symbols

import (
	"fmt"

	"github.com/funvibe/speclink/internal/ast"
)

// Kind tags the occurrence that introduced an identifier.
type Kind string

const (
	KindConst      Kind = "const"
	KindVar        Kind = "var"
	KindDef        Kind = "def"
	KindParam      Kind = "param"
	KindAssumption Kind = "assumption"
	KindModule     Kind = "module"
	KindTypedef    Kind = "typedef"
)

// Namespace separates value names from type names.
type Namespace int

const (
	ValueNamespace Namespace = iota
	TypeNamespace
)

func (n Namespace) String() string {
	if n == TypeNamespace {
		return "type"
	}
	return "value"
}

// Namespace reports which namespace a kind lives in.
func (k Kind) Namespace() Namespace {
	if k == KindTypedef {
		return TypeNamespace
	}
	return ValueNamespace
}

// ValueDefinition records one defining occurrence of a value-level name.
type ValueDefinition struct {
	Kind       Kind
	Identifier string
	// Reference is the id of the node that introduced the name; ast.NoID for builtins.
	Reference uint64
	// Scope is the id of the lambda or let that limits visibility; ast.NoID
	// means module-level.
	Scope uint64
	// TypeAnnotation is the declared type, if any.
	TypeAnnotation ast.Type
}

// IsScoped reports whether the definition is only visible inside a lambda or let.
func (d ValueDefinition) IsScoped() bool { return d.Scope != ast.NoID }

// IsBuiltin reports whether the definition is the registry entry for its name.
func (d ValueDefinition) IsBuiltin() bool {
	return d.Reference == ast.NoID && d.Kind == KindDef && IsBuiltin(d.Identifier)
}

func (d ValueDefinition) String() string {
	s := fmt.Sprintf("%s %s", d.Kind, d.Identifier)
	if d.Reference != ast.NoID {
		s += fmt.Sprintf(" @%d", d.Reference)
	}
	if d.IsScoped() {
		s += fmt.Sprintf(" scope=%d", d.Scope)
	}
	return s
}

// TypeDefinition records a declared type. Type is nil for an uninterpreted type.
type TypeDefinition struct {
	Identifier string
	Type       ast.Type
	Reference  uint64
}

// IsOpaque reports whether the type has no definition.
func (d TypeDefinition) IsOpaque() bool { return d.Type == nil }

// DefinitionTable is the cell of a lookup table: every definition known for
// one identifier, in collection order.
type DefinitionTable struct {
	Values []ValueDefinition
	Types  []TypeDefinition
}

// Clone returns a copy that shares no slices with d.
func (d *DefinitionTable) Clone() *DefinitionTable {
	if d == nil {
		return nil
	}
	out := &DefinitionTable{}
	if len(d.Values) > 0 {
		out.Values = append([]ValueDefinition(nil), d.Values...)
	}
	if len(d.Types) > 0 {
		out.Types = append([]TypeDefinition(nil), d.Types...)
	}
	return out
}

// IsEmpty reports whether the cell holds no definitions.
func (d *DefinitionTable) IsEmpty() bool {
	return d == nil || (len(d.Values) == 0 && len(d.Types) == 0)
}

// AllUnscoped reports whether every value definition is module-level.
func (d *DefinitionTable) AllUnscoped() bool {
	for _, v := range d.Values {
		if v.IsScoped() {
			return false
		}
	}
	return true
}

// OnlyBuiltin reports whether the cell holds nothing but the registry entry.
func (d *DefinitionTable) OnlyBuiltin() bool {
	if len(d.Types) > 0 || len(d.Values) == 0 {
		return false
	}
	for _, v := range d.Values {
		if !v.IsBuiltin() {
			return false
		}
	}
	return true
}

// LookupTable maps identifiers to their definitions within one module.
type LookupTable map[string]*DefinitionTable

// LookupTableByModule maps module names to their lookup tables.
type LookupTableByModule map[string]LookupTable
