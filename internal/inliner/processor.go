package inliner

import (
	"github.com/funvibe/speclink/internal/pipeline"
)

type InlinerProcessor struct{}

func (ip *InlinerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Tables == nil {
		return ctx
	}
	ctx.Modules, ctx.Tables = InlineAll(ctx.Modules, ctx.Tables)
	ctx.Logger.Debug("inlined type aliases", "modules", len(ctx.Modules))
	return ctx
}
