package exec

import (
	"math"

	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/event"
	"insights-pipeline/internal/insights/model"
)

// OHLCVExecutor aggregates trade prints over a window into an OHLCV bar:
// price action (open/high/low/close/typical_price/vwap), volume split by
// aggressor side, notional volume and trade counts (spec §4.5).
type OHLCVExecutor struct {
	cfg config.OHLCVConfig
}

// NewOHLCV builds the OHLCVExecutor for cfg.
func NewOHLCV(cfg config.OHLCVConfig) *OHLCVExecutor { return &OHLCVExecutor{cfg: cfg} }

func (e *OHLCVExecutor) Execute(ctx Context) ([]model.Insight, error) {
	var prices, quantities, sides []float64
	for _, id := range ctx.Inputs {
		for _, s := range ctx.Store.Window(id, e.cfg.Input, ctx.AsOfMillis, e.cfg.WindowSeconds) {
			prices = append(prices, s.Value)
		}
		for _, s := range ctx.Store.Window(id, e.cfg.QuantityInput, ctx.AsOfMillis, e.cfg.WindowSeconds) {
			quantities = append(quantities, s.Value)
		}
		for _, s := range ctx.Store.Window(id, e.cfg.SideInput, ctx.AsOfMillis, e.cfg.WindowSeconds) {
			sides = append(sides, s.Value)
		}
	}
	if len(prices) == 0 {
		return nil, nil
	}

	open, high, low, close := prices[0], prices[0], prices[0], prices[len(prices)-1]
	var notional, volume, buyVolume, sellVolume, buyTradeCount, sellTradeCount float64
	for i, p := range prices {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
		q := 0.0
		if i < len(quantities) {
			q = quantities[i]
		}
		notional += p * q
		volume += q

		if i < len(sides) {
			switch event.Side(sides[i]) {
			case event.SideBuy:
				buyVolume += q
				buyTradeCount++
			case event.SideSell:
				sellVolume += q
				sellTradeCount++
			}
		}
	}

	tradeCount := float64(len(prices))
	typicalPrice := (high + low + close) / 3
	vwap := math.NaN()
	if volume > 0 {
		vwap = notional / volume
	}

	p := e.cfg.OutputPrefix
	var out []model.Insight
	out = append(out, finalize(ctx, p+"_open", open, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_high", high, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_low", low, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_close", close, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_typical_price", typicalPrice, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_vwap", vwap, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_volume", volume, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_notional_volume", notional, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_buy_volume", buyVolume, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_sell_volume", sellVolume, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_trade_count", tradeCount, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_buy_trade_count", buyTradeCount, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_sell_trade_count", sellTradeCount, e.cfg.FillStrategy)...)
	return out, nil
}
