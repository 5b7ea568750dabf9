package exec

import (
	"fmt"

	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/model"
)

// TwoValueExecutor combines the most recent sample of two inputs
// pointwise, with no windowing (spec §4.5; grounded on
// original_source/arkin-insights/src/features/two_value.rs).
type TwoValueExecutor struct {
	cfg config.TwoValueConfig
}

// NewTwoValue builds the TwoValueExecutor for cfg.
func NewTwoValue(cfg config.TwoValueConfig) *TwoValueExecutor { return &TwoValueExecutor{cfg: cfg} }

func (e *TwoValueExecutor) Execute(ctx Context) ([]model.Insight, error) {
	a, okA := ctx.Store.Last(ctx.Output, e.cfg.InputA, ctx.AsOfMillis)
	b, okB := ctx.Store.Last(ctx.Output, e.cfg.InputB, ctx.AsOfMillis)
	if !okA || !okB {
		return nil, nil
	}

	if e.cfg.Algo == config.TwoValueImbalance && (a.Value < 0 || b.Value < 0) {
		return nil, nil
	}

	var value float64
	switch e.cfg.Algo {
	case config.TwoValueRatio:
		value = ratio(a.Value, b.Value)
	case config.TwoValueImbalance:
		value = imbalance(a.Value, b.Value)
	case config.TwoValueSpread, config.TwoValueDifference:
		value = spread(a.Value, b.Value)
	case config.TwoValueElasticity:
		aPrev, okAPrev := ctx.Store.Lag(ctx.Output, e.cfg.InputA, ctx.AsOfMillis, 1)
		bPrev, okBPrev := ctx.Store.Lag(ctx.Output, e.cfg.InputB, ctx.AsOfMillis, 1)
		if !okAPrev || !okBPrev {
			return nil, nil
		}
		value = pointElasticity(a.Value, aPrev.Value, b.Value, bPrev.Value)
	default:
		return nil, fmt.Errorf("two_value: unknown algo %q", e.cfg.Algo)
	}

	return finalize(ctx, e.cfg.Output, value, e.cfg.FillStrategy), nil
}
