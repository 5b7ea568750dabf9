package exec

import (
	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/model"
)

// SpreadExecutor computes ask-minus-bid, the most common two_value use
// (spec §8 scenario 2), kept as its own named primitive instead of a
// generic TwoValue config for readability of pipeline definitions.
type SpreadExecutor struct {
	cfg config.SpreadConfig
}

// NewSpread builds the SpreadExecutor for cfg.
func NewSpread(cfg config.SpreadConfig) *SpreadExecutor { return &SpreadExecutor{cfg: cfg} }

func (e *SpreadExecutor) Execute(ctx Context) ([]model.Insight, error) {
	bid, okBid := ctx.Store.Last(ctx.Output, e.cfg.BidInput, ctx.AsOfMillis)
	ask, okAsk := ctx.Store.Last(ctx.Output, e.cfg.AskInput, ctx.AsOfMillis)
	if !okBid || !okAsk {
		return nil, nil
	}
	return finalize(ctx, e.cfg.Output, ask.Value-bid.Value, e.cfg.FillStrategy), nil
}
