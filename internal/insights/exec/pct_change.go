package exec

import (
	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/model"
)

// PctChangeExecutor computes the fractional change between the current
// sample and the sample Periods ticks earlier. A zero denominator (spec §8
// scenario 3) is NaN by construction and is resolved through the node's
// fill strategy rather than panicking.
type PctChangeExecutor struct {
	cfg config.PctChangeConfig
}

// NewPctChange builds the PctChangeExecutor for cfg.
func NewPctChange(cfg config.PctChangeConfig) *PctChangeExecutor { return &PctChangeExecutor{cfg: cfg} }

func (e *PctChangeExecutor) Execute(ctx Context) ([]model.Insight, error) {
	current, ok := ctx.Store.Last(ctx.Output, e.cfg.Input, ctx.AsOfMillis)
	if !ok {
		return nil, nil
	}
	previous, ok := ctx.Store.Lag(ctx.Output, e.cfg.Input, ctx.AsOfMillis, e.cfg.Periods)
	if !ok {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}

	value := pctChange(current.Value, previous.Value)
	return finalize(ctx, e.cfg.Output, value, e.cfg.FillStrategy), nil
}
