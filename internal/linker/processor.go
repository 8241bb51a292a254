package linker

import (
	"github.com/funvibe/speclink/internal/diagnostics"
	"github.com/funvibe/speclink/internal/pipeline"
)

type LinkerProcessor struct{}

func (lp *LinkerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Tables == nil {
		return ctx
	}

	res, err := Link(ctx.Modules, ctx.Tables, ctx.Logger)
	if err != nil {
		ctx.Logger.Error("link aborted", "err", err)
		ctx.Fatal = err
		return ctx
	}

	for _, err := range res.Errors {
		if errs, ok := diagnostics.AsResolutionErrors(err); ok && ctx.Sources != nil {
			err = errs.WithLocations(ctx.Sources)
		}
		ctx.Errors = append(ctx.Errors, err)
	}
	ctx.Modules = res.Modules
	ctx.Tables = res.Tables
	return ctx
}
