package exec

import (
	"math"

	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/fill"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/insights/model"
	"insights-pipeline/internal/insights/store"
)

// RangeExecutor reduces one input series, read over a window or interval
// and across every concrete instrument of a group, to a single scalar
// (spec §4.5; grounded on
// original_source/arkin-insights/src/features/range.rs).
type RangeExecutor struct {
	cfg config.RangeConfig
}

// NewRange builds the RangeExecutor for cfg.
func NewRange(cfg config.RangeConfig) *RangeExecutor { return &RangeExecutor{cfg: cfg} }

func (e *RangeExecutor) Execute(ctx Context) ([]model.Insight, error) {
	values := collectInput(ctx, func(id instrument.ID) []store.Sample {
		if e.cfg.Data.WindowSeconds > 0 {
			return ctx.Store.Window(id, e.cfg.Input, ctx.AsOfMillis, e.cfg.Data.WindowSeconds)
		}
		return ctx.Store.Interval(id, e.cfg.Input, ctx.AsOfMillis, e.cfg.Data.IntervalCount)
	})

	if len(values) == 0 {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}

	value := reduceRange(e.cfg.Algo, values, e.cfg.Quantile)
	return finalize(ctx, e.cfg.Output, value, e.cfg.FillStrategy), nil
}

// emptyInputInsight applies the node's fill strategy when no input sample
// at all is available, matching range.rs's dedicated empty-values branch
// (distinct from finalize's NaN/Inf rejection, which runs after a value
// has actually been computed).
func emptyInputInsight(ctx Context, output string, strategy fill.Strategy) []model.Insight {
	value, ok := applyFill(ctx, output, strategy)
	if !ok {
		return nil
	}
	value = round6(value)
	ctx.Store.Write(ctx.Output, output, ctx.AsOfMillis, value)
	return []model.Insight{model.New(ctx.PipelineID, ctx.Output, output, ctx.AsOfMillis, value)}
}

func reduceRange(algo config.RangeAlgo, xs []float64, q float64) float64 {
	switch algo {
	case config.RangeCount:
		return float64(len(xs))
	case config.RangeSum:
		return sum(xs)
	case config.RangeSumPositive:
		return sumWhere(xs, func(x float64) bool { return x > 0 }, identity)
	case config.RangeSumNegative:
		return sumWhere(xs, func(x float64) bool { return x < 0 }, identity)
	case config.RangeAbsSum:
		return sumWhere(xs, func(float64) bool { return true }, abs)
	case config.RangeSumAbsPositive:
		return sumWhere(xs, func(x float64) bool { return x > 0 }, abs)
	case config.RangeSumAbsNegative:
		return sumWhere(xs, func(x float64) bool { return x < 0 }, abs)
	case config.RangeMean:
		return mean(xs)
	case config.RangeMedian:
		return median(xs)
	case config.RangeMin:
		return min(xs)
	case config.RangeMax:
		return max(xs)
	case config.RangeLast:
		return xs[len(xs)-1]
	case config.RangeFirst:
		return xs[0]
	case config.RangeAbsolutRange:
		return absolutRange(xs)
	case config.RangeRelativeRange:
		return relativeRange(xs)
	case config.RangeRelativePosition:
		return relativePosition(xs)
	case config.RangeVariance:
		return variance(xs)
	case config.RangeStdDev:
		return stdDev(xs)
	case config.RangeAnnualizedVolatility:
		return annualizedVolatility(xs)
	case config.RangeSkew:
		return skew(xs)
	case config.RangeKurtosis:
		return kurtosis(xs)
	case config.RangeQuantile:
		return quantile(xs, q)
	case config.RangeIqr:
		return iqr(xs)
	case config.RangeAutocorrelation:
		return autocorrelation(xs, 1)
	case config.RangeCoefOfVariation:
		return coefficientOfVariation(xs)
	default:
		// unreachable once validateRange rejects unknown algos at load time.
		return math.NaN()
	}
}
