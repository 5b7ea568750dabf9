package exec

import (
	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/insights/model"
	"insights-pipeline/internal/insights/store"
)

// maWindow reads the node's last Period samples of Input across every
// concrete instrument in the group, the shared read path for the simple
// statistical primitives below.
func maWindow(ctx Context, cfg config.MAConfig) []float64 {
	return collectInput(ctx, func(id instrument.ID) []store.Sample {
		return ctx.Store.Interval(id, cfg.Input, ctx.AsOfMillis, cfg.Period)
	})
}

// SMAExecutor computes the simple moving average of Input over the last
// Period samples.
type SMAExecutor struct{ cfg config.MAConfig }

func NewSMA(cfg config.MAConfig) *SMAExecutor { return &SMAExecutor{cfg: cfg} }

func (e *SMAExecutor) Execute(ctx Context) ([]model.Insight, error) {
	xs := maWindow(ctx, e.cfg)
	if len(xs) == 0 {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}
	return finalize(ctx, e.cfg.Output, mean(xs), e.cfg.FillStrategy), nil
}

// StdDevExecutor computes the sample standard deviation of Input over the
// last Period samples.
type StdDevExecutor struct{ cfg config.MAConfig }

func NewStdDev(cfg config.MAConfig) *StdDevExecutor { return &StdDevExecutor{cfg: cfg} }

func (e *StdDevExecutor) Execute(ctx Context) ([]model.Insight, error) {
	xs := maWindow(ctx, e.cfg)
	if len(xs) == 0 {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}
	return finalize(ctx, e.cfg.Output, stdDev(xs), e.cfg.FillStrategy), nil
}

// SumExecutor computes the sum of Input over the last Period samples.
type SumExecutor struct{ cfg config.MAConfig }

func NewSum(cfg config.MAConfig) *SumExecutor { return &SumExecutor{cfg: cfg} }

func (e *SumExecutor) Execute(ctx Context) ([]model.Insight, error) {
	xs := maWindow(ctx, e.cfg)
	if len(xs) == 0 {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}
	return finalize(ctx, e.cfg.Output, sum(xs), e.cfg.FillStrategy), nil
}

// CountExecutor reports how many Input samples the last-Period-samples
// read returns (at most Period).
type CountExecutor struct{ cfg config.MAConfig }

func NewCount(cfg config.MAConfig) *CountExecutor { return &CountExecutor{cfg: cfg} }

func (e *CountExecutor) Execute(ctx Context) ([]model.Insight, error) {
	xs := maWindow(ctx, e.cfg)
	return finalize(ctx, e.cfg.Output, float64(len(xs)), e.cfg.FillStrategy), nil
}

// HistVolExecutor computes historical (realized) volatility as the
// standard deviation of period-over-period percentage changes across the
// window, annualized the same way Range's AnnualizedVolatility is.
type HistVolExecutor struct{ cfg config.MAConfig }

func NewHistVol(cfg config.MAConfig) *HistVolExecutor { return &HistVolExecutor{cfg: cfg} }

func (e *HistVolExecutor) Execute(ctx Context) ([]model.Insight, error) {
	xs := maWindow(ctx, e.cfg)
	if len(xs) < 2 {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}
	returns := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		returns = append(returns, pctChange(xs[i], xs[i-1]))
	}
	return finalize(ctx, e.cfg.Output, annualizedVolatility(returns), e.cfg.FillStrategy), nil
}

// CumSumExecutor accumulates Input's running total across the whole
// retained series rather than a fixed window (Period is ignored; kept for
// config-shape symmetry with the other MAConfig-based primitives).
type CumSumExecutor struct{ cfg config.MAConfig }

func NewCumSum(cfg config.MAConfig) *CumSumExecutor { return &CumSumExecutor{cfg: cfg} }

func (e *CumSumExecutor) Execute(ctx Context) ([]model.Insight, error) {
	previous, ok := ctx.Store.Last(ctx.Output, e.cfg.Output, ctx.AsOfMillis)
	current, okCur := ctx.Store.Last(ctx.Output, e.cfg.Input, ctx.AsOfMillis)
	if !okCur {
		return nil, nil
	}
	base := 0.0
	if ok {
		base = previous.Value
	}
	return finalize(ctx, e.cfg.Output, base+current.Value, e.cfg.FillStrategy), nil
}

// VWAPExecutor computes the volume-weighted average price of Input over
// the last Period samples, weighted sample-for-sample by QuantityInput
// (e.g. trade_quantity).
type VWAPExecutor struct{ cfg config.MAConfig }

func NewVWAP(cfg config.MAConfig) *VWAPExecutor { return &VWAPExecutor{cfg: cfg} }

func (e *VWAPExecutor) Execute(ctx Context) ([]model.Insight, error) {
	prices := maWindow(ctx, e.cfg)
	quantities := collectInput(ctx, func(id instrument.ID) []store.Sample {
		return ctx.Store.Interval(id, e.cfg.QuantityInput, ctx.AsOfMillis, e.cfg.Period)
	})
	if len(prices) == 0 {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}
	n := len(prices)
	if len(quantities) < n {
		n = len(quantities)
	}
	return finalize(ctx, e.cfg.Output, weightedMean(prices[:n], quantities[:n]), e.cfg.FillStrategy), nil
}
