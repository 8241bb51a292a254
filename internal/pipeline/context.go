package pipeline

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/symbols"
)

// PipelineContext is threaded through every processor. Processors read the
// fields produced by earlier stages and replace the ones they produce.
type PipelineContext struct {
	RunID  string
	Logger *log.Logger

	Modules []*ast.Module // Top-level modules in document order
	Sources ast.SourceMap // Node id -> document position, may be nil
	Tables  symbols.LookupTableByModule

	// Errors holds recoverable diagnostics (resolution errors). Stages keep
	// running when it is non-empty.
	Errors []error
	// Fatal is set when a stage hit an internal consistency failure. No
	// further stage runs.
	Fatal error
}

// NewPipelineContext creates a context for modules with a fresh run id.
// A nil logger discards output.
func NewPipelineContext(modules []*ast.Module, sources ast.SourceMap, logger *log.Logger) *PipelineContext {
	runID := uuid.NewString()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PipelineContext{
		RunID:   runID,
		Logger:  logger.With("run", runID),
		Modules: modules,
		Sources: sources,
	}
}

// Failed reports whether any stage reported an error.
func (ctx *PipelineContext) Failed() bool {
	return ctx.Fatal != nil || len(ctx.Errors) > 0
}

// Module returns the top-level module called name.
func (ctx *PipelineContext) Module(name string) (*ast.Module, bool) {
	for _, m := range ctx.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}
