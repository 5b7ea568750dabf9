package exec

import (
	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/model"
)

// LagExecutor compares the current sample of an input against the sample
// Periods ticks earlier in its own history (spec §4.5; grounded on
// original_source/arkin-insights/src/features/lag.rs).
type LagExecutor struct {
	cfg config.LagConfig
}

// NewLag builds the LagExecutor for cfg.
func NewLag(cfg config.LagConfig) *LagExecutor { return &LagExecutor{cfg: cfg} }

func (e *LagExecutor) Execute(ctx Context) ([]model.Insight, error) {
	current, ok := ctx.Store.Last(ctx.Output, e.cfg.Input, ctx.AsOfMillis)
	if !ok {
		return nil, nil
	}

	previous, ok := ctx.Store.Lag(ctx.Output, e.cfg.Input, ctx.AsOfMillis, e.cfg.Periods)
	if !ok {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}

	var value float64
	switch e.cfg.Algo {
	case config.LagAbsoluteChange:
		value = absChange(current.Value, previous.Value)
	case config.LagPercentChange:
		value = pctChange(current.Value, previous.Value)
	case config.LagLogChange:
		value = logChange(current.Value, previous.Value)
	case config.LagDifference:
		value = difference(current.Value, previous.Value)
	default:
		value = difference(current.Value, previous.Value)
	}

	return finalize(ctx, e.cfg.Output, value, e.cfg.FillStrategy), nil
}
