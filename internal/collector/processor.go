package collector

import (
	"github.com/funvibe/speclink/internal/pipeline"
)

type CollectorProcessor struct{}

func (cp *CollectorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.Tables = Collect(ctx.Modules...)
	ctx.Logger.Debug("collected definitions", "modules", len(ctx.Tables))
	return ctx
}
