package exec

import (
	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/insights/model"
	"insights-pipeline/internal/insights/store"
)

// DualRangeExecutor reduces two input series over the same window or
// interval to one scalar (spec §4.5; grounded on
// original_source/arkin-insights/src/features/dual_range.rs). Requires the
// two series to have equal length after resolution, matching the Rust
// original's explicit length-mismatch rejection.
type DualRangeExecutor struct {
	cfg config.DualRangeConfig
}

// NewDualRange builds the DualRangeExecutor for cfg.
func NewDualRange(cfg config.DualRangeConfig) *DualRangeExecutor { return &DualRangeExecutor{cfg: cfg} }

func (e *DualRangeExecutor) Execute(ctx Context) ([]model.Insight, error) {
	read := func(featureID string) []float64 {
		return collectInput(ctx, func(id instrument.ID) []store.Sample {
			if e.cfg.Data.WindowSeconds > 0 {
				return ctx.Store.Window(id, featureID, ctx.AsOfMillis, e.cfg.Data.WindowSeconds)
			}
			return ctx.Store.Interval(id, featureID, ctx.AsOfMillis, e.cfg.Data.IntervalCount)
		})
	}

	a := read(e.cfg.InputA)
	b := read(e.cfg.InputB)
	if len(a) < 2 || len(b) < 2 || len(a) != len(b) {
		return nil, nil
	}

	var value float64
	switch e.cfg.Algo {
	case config.DualRangeCovariance:
		value = covariance(a, b)
	case config.DualRangeCorrelation:
		value = correlation(a, b)
	case config.DualRangeCosineSimilarity:
		value = cosineSimilarity(a, b)
	case config.DualRangeBeta:
		value = beta(a, b)
	case config.DualRangeWeightedMean:
		value = weightedMean(a, b)
	default:
		value = correlation(a, b)
	}

	return finalize(ctx, e.cfg.Output, value, e.cfg.FillStrategy), nil
}
