package config

import "insights-pipeline/internal/insights/instrument"

// Inputs returns the feature_id names this node reads, used by the DAG
// builder to infer edges (spec §4.2; grounded on the Feature trait's
// inputs()/outputs() in original_source/arkin-insights/src/feature_pipeline/graph.rs).
func (f FeatureConfig) Inputs() []string {
	switch {
	case f.Range != nil:
		return []string{f.Range.Input}
	case f.DualRange != nil:
		return []string{f.DualRange.InputA, f.DualRange.InputB}
	case f.TwoValue != nil:
		return []string{f.TwoValue.InputA, f.TwoValue.InputB}
	case f.Lag != nil:
		return []string{f.Lag.Input}
	case f.OHLCV != nil:
		return []string{f.OHLCV.Input, f.OHLCV.QuantityInput, f.OHLCV.SideInput}
	case f.SMA != nil:
		return []string{f.SMA.Input}
	case f.EMA != nil:
		return []string{f.EMA.Input}
	case f.MACD != nil:
		return []string{f.MACD.Input}
	case f.BB != nil:
		return []string{f.BB.Input}
	case f.RSI != nil:
		return []string{f.RSI.Input}
	case f.StdDev != nil:
		return []string{f.StdDev.Input}
	case f.Sum != nil:
		return []string{f.Sum.Input}
	case f.Count != nil:
		return []string{f.Count.Input}
	case f.Spread != nil:
		return []string{f.Spread.BidInput, f.Spread.AskInput}
	case f.HistVol != nil:
		return []string{f.HistVol.Input}
	case f.CumSum != nil:
		return []string{f.CumSum.Input}
	case f.PctChange != nil:
		return []string{f.PctChange.Input}
	case f.VWAP != nil:
		return []string{f.VWAP.Input, f.VWAP.QuantityInput}
	default:
		return nil
	}
}

// Outputs returns the feature_id names this node produces.
func (f FeatureConfig) Outputs() []string {
	switch {
	case f.Range != nil:
		return []string{f.Range.Output}
	case f.DualRange != nil:
		return []string{f.DualRange.Output}
	case f.TwoValue != nil:
		return []string{f.TwoValue.Output}
	case f.Lag != nil:
		return []string{f.Lag.Output}
	case f.OHLCV != nil:
		p := f.OHLCV.OutputPrefix
		return []string{
			p + "_open", p + "_high", p + "_low", p + "_close", p + "_typical_price",
			p + "_vwap", p + "_volume", p + "_notional_volume", p + "_buy_volume",
			p + "_sell_volume", p + "_trade_count", p + "_buy_trade_count", p + "_sell_trade_count",
		}
	case f.SMA != nil:
		return []string{f.SMA.Output}
	case f.EMA != nil:
		return []string{f.EMA.Output}
	case f.MACD != nil:
		p := f.MACD.OutputPrefix
		return []string{p + "_macd", p + "_signal", p + "_histogram"}
	case f.BB != nil:
		p := f.BB.OutputPrefix
		return []string{p + "_upper", p + "_middle", p + "_lower", p + "_oscillator", p + "_width"}
	case f.RSI != nil:
		return []string{f.RSI.Output}
	case f.StdDev != nil:
		return []string{f.StdDev.Output}
	case f.Sum != nil:
		return []string{f.Sum.Output}
	case f.Count != nil:
		return []string{f.Count.Output}
	case f.Spread != nil:
		return []string{f.Spread.Output}
	case f.HistVol != nil:
		return []string{f.HistVol.Output}
	case f.CumSum != nil:
		return []string{f.CumSum.Output}
	case f.PctChange != nil:
		return []string{f.PctChange.Output}
	case f.VWAP != nil:
		return []string{f.VWAP.Output}
	default:
		return nil
	}
}

// SelectorAndGroupBy returns the node's instrument selector and group_by
// mask for DAG instantiation. The zero Selector/GroupBy (matches
// everything, one group) is returned for a node kind this function does
// not recognize, which validateKind has already rejected by construction.
func (f FeatureConfig) SelectorAndGroupBy() (instrument.Selector, instrument.GroupBy) {
	switch {
	case f.Range != nil:
		return f.Range.Selector, f.Range.GroupBy
	case f.DualRange != nil:
		return f.DualRange.Selector, f.DualRange.GroupBy
	case f.TwoValue != nil:
		return f.TwoValue.Selector, f.TwoValue.GroupBy
	case f.Lag != nil:
		return f.Lag.Selector, f.Lag.GroupBy
	case f.OHLCV != nil:
		return f.OHLCV.Selector, f.OHLCV.GroupBy
	case f.SMA != nil:
		return f.SMA.Selector, f.SMA.GroupBy
	case f.EMA != nil:
		return f.EMA.Selector, f.EMA.GroupBy
	case f.MACD != nil:
		return f.MACD.Selector, f.MACD.GroupBy
	case f.BB != nil:
		return f.BB.Selector, f.BB.GroupBy
	case f.RSI != nil:
		return f.RSI.Selector, f.RSI.GroupBy
	case f.StdDev != nil:
		return f.StdDev.Selector, f.StdDev.GroupBy
	case f.Sum != nil:
		return f.Sum.Selector, f.Sum.GroupBy
	case f.Count != nil:
		return f.Count.Selector, f.Count.GroupBy
	case f.Spread != nil:
		return f.Spread.Selector, f.Spread.GroupBy
	case f.HistVol != nil:
		return f.HistVol.Selector, f.HistVol.GroupBy
	case f.CumSum != nil:
		return f.CumSum.Selector, f.CumSum.GroupBy
	case f.PctChange != nil:
		return f.PctChange.Selector, f.PctChange.GroupBy
	case f.VWAP != nil:
		return f.VWAP.Selector, f.VWAP.GroupBy
	default:
		return instrument.Selector{}, instrument.GroupBy{}
	}
}
