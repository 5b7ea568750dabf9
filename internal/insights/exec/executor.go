package exec

import (
	"math"

	"github.com/google/uuid"

	"insights-pipeline/internal/insights/fill"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/insights/model"
	"insights-pipeline/internal/insights/store"
)

// Context is everything one node-instance execution needs: the tick time,
// the state store, the pipeline identity for stamping Insights, and the
// concrete instrument(s) this instance reads from and writes to.
//
// Inputs holds every concrete member instrument a group_by node instance
// aggregates over; a node with no group_by has exactly one Input, equal to
// Output.
type Context struct {
	PipelineID uuid.UUID
	Store      *store.Store
	AsOfMillis int64
	Inputs     []instrument.ID
	Output     instrument.ID
}

// Executor computes zero or more Insights for one node-instance per tick
// (more than one for nodes like OHLCV/MACD/BB that emit a named bundle of
// outputs). Implementations never return an error for "no data
// available" — that is fill-strategy territory — only for structurally
// invalid configuration caught too late to reject at load time.
type Executor interface {
	Execute(ctx Context) ([]model.Insight, error)
}

// applyFill resolves a missing-input-data situation per the node's
// FillStrategy: forward-fill reads the output series' own last value,
// zero-fill substitutes 0, skip emits nothing (spec §4.5).
func applyFill(ctx Context, outputFeatureID string, strategy fill.Strategy) (float64, bool) {
	switch strategy {
	case fill.ZeroFill:
		return 0, true
	case fill.ForwardFill:
		last, ok := ctx.Store.Last(ctx.Output, outputFeatureID, ctx.AsOfMillis)
		if !ok {
			return 0, false
		}
		return last.Value, true
	default: // Skip
		return 0, false
	}
}

// finalize rejects non-finite values (never fails a tick, applies the
// fill strategy instead — spec §4.5), rounds to 6 decimal places, writes
// the result back into the store so later nodes can chain off it, and
// wraps it as a single-element Insight slice (nil when no value could be
// produced at all).
func finalize(ctx Context, outputFeatureID string, value float64, strategy fill.Strategy) []model.Insight {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		filled, ok := applyFill(ctx, outputFeatureID, strategy)
		if !ok {
			return nil
		}
		value = filled
	}
	value = round6(value)
	ctx.Store.Write(ctx.Output, outputFeatureID, ctx.AsOfMillis, value)
	return []model.Insight{model.New(ctx.PipelineID, ctx.Output, outputFeatureID, ctx.AsOfMillis, value)}
}

// collectInput reads one input feature series across every concrete
// instrument in ctx.Inputs and concatenates the samples, matching
// InstrumentScope's flat_map over scope.inputs in
// original_source/arkin-insights/src/features/range.rs.
func collectInput(ctx Context, read func(id instrument.ID) []store.Sample) []float64 {
	var out []float64
	for _, id := range ctx.Inputs {
		for _, s := range read(id) {
			out = append(out, s.Value)
		}
	}
	return out
}
