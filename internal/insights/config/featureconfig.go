/*
Package config defines the on-disk shape of a pipeline definition: the
FeatureConfig variants a DAG is built from (spec §3) and the top-level
PipelineConfig that wraps them. Mirrors internal/ops/config.go's
FileConfig/validate-then-resolve split, ported from JSON to YAML.
*/
package config

import (
	"insights-pipeline/internal/insights/fill"
	"insights-pipeline/internal/insights/instrument"
)

// RangeAlgo enumerates the single-window statistical reductions a Range
// node computes. AbsolutRange through AnnualizedVolatility are supplemented
// from original_source/arkin-insights/src/features/range.rs beyond what the
// distilled spec names explicitly.
type RangeAlgo string

const (
	RangeCount               RangeAlgo = "count"
	RangeSum                 RangeAlgo = "sum"
	RangeSumPositive         RangeAlgo = "sum_positive"
	RangeSumNegative         RangeAlgo = "sum_negative"
	RangeAbsSum              RangeAlgo = "abs_sum"
	RangeSumAbsPositive      RangeAlgo = "sum_abs_positive"
	RangeSumAbsNegative      RangeAlgo = "sum_abs_negative"
	RangeMean                RangeAlgo = "mean"
	RangeMedian              RangeAlgo = "median"
	RangeMin                 RangeAlgo = "min"
	RangeMax                 RangeAlgo = "max"
	RangeAbsolutRange        RangeAlgo = "absolut_range"
	RangeRelativeRange       RangeAlgo = "relative_range"
	RangeRelativePosition    RangeAlgo = "relative_position"
	RangeVariance            RangeAlgo = "variance"
	RangeStdDev              RangeAlgo = "std_dev"
	RangeAnnualizedVolatility RangeAlgo = "annualized_volatility"
	RangeSkew                RangeAlgo = "skew"
	RangeKurtosis            RangeAlgo = "kurtosis"
	RangeQuantile            RangeAlgo = "quantile"
	RangeIqr                 RangeAlgo = "iqr"
	RangeAutocorrelation     RangeAlgo = "autocorrelation"
	RangeCoefOfVariation     RangeAlgo = "coef_of_variation"
	RangeLast                RangeAlgo = "last"
	RangeFirst               RangeAlgo = "first"
)

// RangeData selects the lookback shape: exactly one of WindowSeconds or
// IntervalCount is set (spec §3 invariant).
type RangeData struct {
	WindowSeconds int64 `yaml:"window_seconds,omitempty" mapstructure:"window_seconds,omitempty"`
	IntervalCount int   `yaml:"interval_count,omitempty" mapstructure:"interval_count,omitempty"`
}

// RangeConfig reduces one input series over a window or interval to a
// single scalar output.
type RangeConfig struct {
	Input        string          `yaml:"input" mapstructure:"input"`
	Output       string          `yaml:"output" mapstructure:"output"`
	Algo         RangeAlgo       `yaml:"algo" mapstructure:"algo"`
	Data         RangeData       `yaml:"data" mapstructure:"data"`
	Quantile     float64         `yaml:"quantile,omitempty" mapstructure:"quantile,omitempty"`
	FillStrategy fill.Strategy   `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector     instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy      instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// DualRangeAlgo enumerates the two-series reductions a DualRange node
// computes. CosineSimilarity and Beta are supplemented from
// original_source/arkin-insights/src/features/dual_range.rs.
type DualRangeAlgo string

const (
	DualRangeCovariance      DualRangeAlgo = "covariance"
	DualRangeCorrelation     DualRangeAlgo = "correlation"
	DualRangeCosineSimilarity DualRangeAlgo = "cosine_similarity"
	DualRangeBeta            DualRangeAlgo = "beta"
	DualRangeWeightedMean    DualRangeAlgo = "weighted_mean"
)

// DualRangeConfig reduces two input series over the same window/interval to
// a single scalar output (e.g. correlation between two instruments' mid
// prices).
type DualRangeConfig struct {
	InputA       string          `yaml:"input_a" mapstructure:"input_a"`
	InputB       string          `yaml:"input_b" mapstructure:"input_b"`
	Output       string          `yaml:"output" mapstructure:"output"`
	Algo         DualRangeAlgo   `yaml:"algo" mapstructure:"algo"`
	Data         RangeData       `yaml:"data" mapstructure:"data"`
	FillStrategy fill.Strategy   `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector     instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy      instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// TwoValueAlgo enumerates the pointwise (no window) combinations of two
// single values a TwoValue node computes: Ratio/Imbalance/Spread/Difference
// are the required method set, with Elasticity supplemented from
// original_source/arkin-insights/src/features/two_value.rs as a genuine
// point-elasticity addition alongside them, not a replacement.
type TwoValueAlgo string

const (
	TwoValueRatio      TwoValueAlgo = "ratio"
	TwoValueImbalance  TwoValueAlgo = "imbalance"
	TwoValueSpread     TwoValueAlgo = "spread"
	TwoValueDifference TwoValueAlgo = "difference"
	TwoValueElasticity TwoValueAlgo = "elasticity"
)

// TwoValueConfig combines the latest sample of two inputs pointwise, with
// no windowing (spec §4.5; e.g. bid/ask spread or imbalance).
type TwoValueConfig struct {
	InputA       string          `yaml:"input_a" mapstructure:"input_a"`
	InputB       string          `yaml:"input_b" mapstructure:"input_b"`
	Output       string          `yaml:"output" mapstructure:"output"`
	Algo         TwoValueAlgo    `yaml:"algo" mapstructure:"algo"`
	FillStrategy fill.Strategy   `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector     instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy      instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// LagAlgo enumerates the lookback-offset computations a Lag node computes,
// grounded on original_source/arkin-insights/src/features/lag.rs.
type LagAlgo string

const (
	LagAbsoluteChange LagAlgo = "absolute_change"
	LagPercentChange  LagAlgo = "percent_change"
	LagLogChange      LagAlgo = "log_change"
	LagDifference     LagAlgo = "difference"
)

// LagConfig reads an input's value k samples before the current tick.
type LagConfig struct {
	Input        string          `yaml:"input" mapstructure:"input"`
	Output       string          `yaml:"output" mapstructure:"output"`
	Algo         LagAlgo         `yaml:"algo" mapstructure:"algo"`
	Periods      int             `yaml:"periods" mapstructure:"periods"`
	FillStrategy fill.Strategy   `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector     instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy      instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// OHLCVConfig aggregates trade prints into an OHLCV bar over a window:
// price action (open/high/low/close/typical_price), volume (Sigma q, split
// by aggressor side) and trade counts (total, split by side).
type OHLCVConfig struct {
	Input         string          `yaml:"input" mapstructure:"input"`
	QuantityInput string          `yaml:"quantity_input" mapstructure:"quantity_input"`
	SideInput     string          `yaml:"side_input" mapstructure:"side_input"`
	OutputPrefix  string          `yaml:"output_prefix" mapstructure:"output_prefix"`
	WindowSeconds int64           `yaml:"window_seconds" mapstructure:"window_seconds"`
	FillStrategy  fill.Strategy   `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector      instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy       instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// MAConfig is the shared shape of SMA/EMA/StdDev/Sum/Count/HistVol/CumSum/
// VWAP primitives: one input series, one lookback window, one numeric
// parameter (period) and one output. QuantityInput is only read by VWAP,
// which weights Input's samples by the matching sample of this series
// (e.g. trade_quantity) instead of averaging Input plainly.
type MAConfig struct {
	Input         string          `yaml:"input" mapstructure:"input"`
	QuantityInput string          `yaml:"quantity_input,omitempty" mapstructure:"quantity_input,omitempty"`
	Output        string          `yaml:"output" mapstructure:"output"`
	Period        int             `yaml:"period" mapstructure:"period"`
	FillStrategy  fill.Strategy   `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector      instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy       instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// MACDConfig computes the MACD line, signal line and histogram via
// github.com/markcheno/go-talib.
type MACDConfig struct {
	Input        string `yaml:"input" mapstructure:"input"`
	OutputPrefix string `yaml:"output_prefix" mapstructure:"output_prefix"`
	FastPeriod   int    `yaml:"fast_period" mapstructure:"fast_period"`
	SlowPeriod   int    `yaml:"slow_period" mapstructure:"slow_period"`
	SignalPeriod int    `yaml:"signal_period" mapstructure:"signal_period"`
	FillStrategy fill.Strategy       `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector     instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy      instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// BBConfig computes Bollinger Bands via github.com/markcheno/go-talib.
type BBConfig struct {
	Input        string  `yaml:"input" mapstructure:"input"`
	OutputPrefix string  `yaml:"output_prefix" mapstructure:"output_prefix"`
	Period       int     `yaml:"period" mapstructure:"period"`
	NumStdDev    float64 `yaml:"num_std_dev" mapstructure:"num_std_dev"`
	FillStrategy fill.Strategy       `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector     instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy      instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// PctChangeConfig computes the fractional change between the current
// sample and the sample `periods` ticks earlier (spec §8 scenario 3: zero
// denominator yields the configured FillStrategy's output, never a panic).
type PctChangeConfig struct {
	Input        string        `yaml:"input" mapstructure:"input"`
	Output       string        `yaml:"output" mapstructure:"output"`
	Periods      int           `yaml:"periods" mapstructure:"periods"`
	FillStrategy fill.Strategy `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector     instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy      instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// SpreadConfig is the TwoValue specialization for bid/ask spread, kept as a
// distinct named primitive because it is the most common two_value use
// (spec §8 scenario 2 names it directly as "Imbalance"'s sibling).
type SpreadConfig struct {
	BidInput     string        `yaml:"bid_input" mapstructure:"bid_input"`
	AskInput     string        `yaml:"ask_input" mapstructure:"ask_input"`
	Output       string        `yaml:"output" mapstructure:"output"`
	FillStrategy fill.Strategy `yaml:"fill_strategy,omitempty" mapstructure:"fill_strategy,omitempty"`
	Selector     instrument.Selector `yaml:"selector,omitempty" mapstructure:"selector,omitempty"`
	GroupBy      instrument.GroupBy  `yaml:"group_by,omitempty" mapstructure:"group_by,omitempty"`
}

// FeatureConfig is a single tagged-union node definition in a pipeline's
// feature list. Exactly one of the typed fields is non-nil, selected by
// Kind, mirroring the Rust original's enum-of-structs
// (original_source/arkin-insights/src/feature_pipeline/graph.rs).
type FeatureConfig struct {
	ID   string `yaml:"id" mapstructure:"id"`
	Kind string `yaml:"kind" mapstructure:"kind"`

	Range     *RangeConfig     `yaml:"range,omitempty" mapstructure:"range,omitempty"`
	DualRange *DualRangeConfig `yaml:"dual_range,omitempty" mapstructure:"dual_range,omitempty"`
	TwoValue  *TwoValueConfig  `yaml:"two_value,omitempty" mapstructure:"two_value,omitempty"`
	Lag       *LagConfig       `yaml:"lag,omitempty" mapstructure:"lag,omitempty"`
	OHLCV     *OHLCVConfig     `yaml:"ohlcv,omitempty" mapstructure:"ohlcv,omitempty"`
	SMA       *MAConfig        `yaml:"sma,omitempty" mapstructure:"sma,omitempty"`
	EMA       *MAConfig        `yaml:"ema,omitempty" mapstructure:"ema,omitempty"`
	MACD      *MACDConfig      `yaml:"macd,omitempty" mapstructure:"macd,omitempty"`
	BB        *BBConfig        `yaml:"bb,omitempty" mapstructure:"bb,omitempty"`
	RSI       *MAConfig        `yaml:"rsi,omitempty" mapstructure:"rsi,omitempty"`
	StdDev    *MAConfig        `yaml:"std_dev,omitempty" mapstructure:"std_dev,omitempty"`
	Sum       *MAConfig        `yaml:"sum,omitempty" mapstructure:"sum,omitempty"`
	Count     *MAConfig        `yaml:"count,omitempty" mapstructure:"count,omitempty"`
	Spread    *SpreadConfig    `yaml:"spread,omitempty" mapstructure:"spread,omitempty"`
	HistVol   *MAConfig        `yaml:"hist_vol,omitempty" mapstructure:"hist_vol,omitempty"`
	CumSum    *MAConfig        `yaml:"cum_sum,omitempty" mapstructure:"cum_sum,omitempty"`
	PctChange *PctChangeConfig `yaml:"pct_change,omitempty" mapstructure:"pct_change,omitempty"`
	VWAP      *MAConfig        `yaml:"vwap,omitempty" mapstructure:"vwap,omitempty"`
}
