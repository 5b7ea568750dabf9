package config

import (
	"fmt"

	"insights-pipeline/internal/insights/ierrors"
)

// Validate checks structural invariants a PipelineConfig must satisfy
// before a DAG can be built from it (spec §3/§7): required fields are
// present, each feature kind's typed payload matches Kind, and the
// configured TTL covers the lookback of every Range, DualRange and OHLCV
// node. The Period of SMA-style, MACD and BB nodes and the Periods of Lag
// and PctChange nodes are not checked against the TTL.
func (p PipelineConfig) Validate() error {
	if p.Name == "" {
		return ierrors.NewConfigInvalid("pipeline name is empty")
	}
	if p.MinIntervalSeconds <= 0 {
		return ierrors.NewConfigInvalid("min_interval_seconds must be > 0")
	}
	if p.WarmupSteps < 0 {
		return ierrors.NewConfigInvalid("warmup_steps must be >= 0")
	}
	if len(p.Features) == 0 {
		return ierrors.NewConfigInvalid("pipeline has no features")
	}

	seen := make(map[string]bool, len(p.Features))
	for i, f := range p.Features {
		if f.ID == "" {
			return ierrors.NewConfigInvalid(fmt.Sprintf("feature[%d]: id is empty", i))
		}
		if seen[f.ID] {
			return ierrors.NewConfigInvalid(fmt.Sprintf("feature %q: duplicate id", f.ID))
		}
		seen[f.ID] = true

		lookbackSeconds, err := validateKind(f)
		if err != nil {
			return err
		}

		requiredTTL := lookbackSeconds
		if requiredTTL > p.StateTTLSeconds {
			return ierrors.NewConfigInvalid(fmt.Sprintf(
				"feature %q: state_ttl_seconds (%d) is shorter than its own lookback (%d)",
				f.ID, p.StateTTLSeconds, requiredTTL))
		}
	}
	return nil
}

// validateKind checks that exactly one typed payload matches f.Kind and
// that payload's own fields are well formed, returning the feature's
// lookback window in seconds for TTL validation.
func validateKind(f FeatureConfig) (int64, error) {
	count := 0
	var lookback int64
	var err error

	check := func(present bool, lb int64, e error) {
		if present {
			count++
			lookback, err = lb, e
		}
	}

	check(f.Range != nil, rangeLookback(f.Range), validateRange(f.ID, f.Range))
	check(f.DualRange != nil, rangeLookback(&f.DualRange.Data), validateDualRange(f.ID, f.DualRange))
	check(f.TwoValue != nil, 0, validateTwoValue(f.ID, f.TwoValue))
	check(f.Lag != nil, 0, validateLag(f.ID, f.Lag))
	check(f.OHLCV != nil, f.OHLCV.WindowSeconds, validateOHLCV(f.ID, f.OHLCV))
	check(f.SMA != nil, 0, validateMA(f.ID, "sma", f.SMA))
	check(f.EMA != nil, 0, validateMA(f.ID, "ema", f.EMA))
	check(f.MACD != nil, 0, validateMACD(f.ID, f.MACD))
	check(f.BB != nil, 0, validateBB(f.ID, f.BB))
	check(f.RSI != nil, 0, validateMA(f.ID, "rsi", f.RSI))
	check(f.StdDev != nil, 0, validateMA(f.ID, "std_dev", f.StdDev))
	check(f.Sum != nil, 0, validateMA(f.ID, "sum", f.Sum))
	check(f.Count != nil, 0, validateMA(f.ID, "count", f.Count))
	check(f.Spread != nil, 0, validateSpread(f.ID, f.Spread))
	check(f.HistVol != nil, 0, validateMA(f.ID, "hist_vol", f.HistVol))
	check(f.CumSum != nil, 0, validateMA(f.ID, "cum_sum", f.CumSum))
	check(f.PctChange != nil, 0, validatePctChange(f.ID, f.PctChange))
	check(f.VWAP != nil, 0, validateMA(f.ID, "vwap", f.VWAP))

	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ierrors.NewConfigInvalid(fmt.Sprintf("feature %q: kind %q has no matching payload", f.ID, f.Kind))
	}
	if count > 1 {
		return 0, ierrors.NewConfigInvalid(fmt.Sprintf("feature %q: more than one typed payload set", f.ID))
	}
	return lookback, nil
}

func rangeLookback(d *RangeData) int64 {
	if d.WindowSeconds > 0 {
		return d.WindowSeconds
	}
	// interval_count is expressed in ticks; it is counted here as one
	// second per tick and is not multiplied by min_interval_seconds, so with
	// min_interval_seconds above 1 a TTL shorter than the interval's real
	// time span still passes.
	return int64(d.IntervalCount)
}

func validateRange(id string, r *RangeConfig) error {
	if r.Input == "" || r.Output == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("range feature %q: input/output must be set", id))
	}
	if r.Data.WindowSeconds > 0 && r.Data.IntervalCount > 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("range feature %q: only one of window_seconds/interval_count may be set", id))
	}
	if r.Data.WindowSeconds == 0 && r.Data.IntervalCount == 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("range feature %q: one of window_seconds/interval_count must be set", id))
	}
	if r.Algo == RangeQuantile && (r.Quantile <= 0 || r.Quantile >= 1) {
		return ierrors.NewConfigInvalid(fmt.Sprintf("range feature %q: quantile algo requires 0 < quantile < 1", id))
	}
	switch r.Algo {
	case RangeCount, RangeSum, RangeSumPositive, RangeSumNegative, RangeAbsSum,
		RangeSumAbsPositive, RangeSumAbsNegative, RangeMean, RangeMedian, RangeMin, RangeMax,
		RangeAbsolutRange, RangeRelativeRange, RangeRelativePosition, RangeVariance, RangeStdDev,
		RangeAnnualizedVolatility, RangeSkew, RangeKurtosis, RangeQuantile, RangeIqr,
		RangeAutocorrelation, RangeCoefOfVariation, RangeLast, RangeFirst:
	default:
		return ierrors.NewConfigInvalid(fmt.Sprintf("range feature %q: unknown algo %q", id, r.Algo))
	}
	return nil
}

func validateDualRange(id string, d *DualRangeConfig) error {
	if d.InputA == "" || d.InputB == "" || d.Output == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("dual_range feature %q: input_a/input_b/output must be set", id))
	}
	if d.Data.WindowSeconds > 0 && d.Data.IntervalCount > 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("dual_range feature %q: only one of window_seconds/interval_count may be set", id))
	}
	if d.Data.WindowSeconds == 0 && d.Data.IntervalCount == 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("dual_range feature %q: one of window_seconds/interval_count must be set", id))
	}
	return nil
}

func validateTwoValue(id string, t *TwoValueConfig) error {
	if t.InputA == "" || t.InputB == "" || t.Output == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("two_value feature %q: input_a/input_b/output must be set", id))
	}
	switch t.Algo {
	case TwoValueRatio, TwoValueImbalance, TwoValueSpread, TwoValueDifference, TwoValueElasticity:
	default:
		return ierrors.NewConfigInvalid(fmt.Sprintf("two_value feature %q: unknown algo %q", id, t.Algo))
	}
	return nil
}

func validateLag(id string, l *LagConfig) error {
	if l.Input == "" || l.Output == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("lag feature %q: input/output must be set", id))
	}
	if l.Periods <= 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("lag feature %q: periods must be > 0", id))
	}
	return nil
}

func validateOHLCV(id string, o *OHLCVConfig) error {
	if o.Input == "" || o.QuantityInput == "" || o.SideInput == "" || o.OutputPrefix == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("ohlcv feature %q: input/quantity_input/side_input/output_prefix must be set", id))
	}
	if o.WindowSeconds <= 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("ohlcv feature %q: window_seconds must be > 0", id))
	}
	return nil
}

func validateMA(id, kind string, m *MAConfig) error {
	if m.Input == "" || m.Output == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("%s feature %q: input/output must be set", kind, id))
	}
	if m.Period <= 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("%s feature %q: period must be > 0", kind, id))
	}
	if kind == "vwap" && m.QuantityInput == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("vwap feature %q: quantity_input must be set", id))
	}
	return nil
}

func validateMACD(id string, m *MACDConfig) error {
	if m.Input == "" || m.OutputPrefix == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("macd feature %q: input/output_prefix must be set", id))
	}
	if m.FastPeriod <= 0 || m.SlowPeriod <= 0 || m.SignalPeriod <= 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("macd feature %q: periods must be > 0", id))
	}
	if m.FastPeriod >= m.SlowPeriod {
		return ierrors.NewConfigInvalid(fmt.Sprintf("macd feature %q: fast_period must be < slow_period", id))
	}
	return nil
}

func validateBB(id string, b *BBConfig) error {
	if b.Input == "" || b.OutputPrefix == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("bb feature %q: input/output_prefix must be set", id))
	}
	if b.Period <= 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("bb feature %q: period must be > 0", id))
	}
	if b.NumStdDev <= 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("bb feature %q: num_std_dev must be > 0", id))
	}
	return nil
}

func validateSpread(id string, s *SpreadConfig) error {
	if s.BidInput == "" || s.AskInput == "" || s.Output == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("spread feature %q: bid_input/ask_input/output must be set", id))
	}
	return nil
}

func validatePctChange(id string, p *PctChangeConfig) error {
	if p.Input == "" || p.Output == "" {
		return ierrors.NewConfigInvalid(fmt.Sprintf("pct_change feature %q: input/output must be set", id))
	}
	if p.Periods <= 0 {
		return ierrors.NewConfigInvalid(fmt.Sprintf("pct_change feature %q: periods must be > 0", id))
	}
	return nil
}
