package exec

import (
	"math"

	"github.com/markcheno/go-talib"

	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/insights/model"
	"insights-pipeline/internal/insights/store"
)

// maWindowN reads the last n samples of featureID across every concrete
// instrument in the group, used by the go-talib-backed executors below
// which need a longer lookback than their stated Period to let the
// indicator settle before its trailing value is meaningful.
func maWindowN(ctx Context, featureID string, n int) []float64 {
	return collectInput(ctx, func(id instrument.ID) []store.Sample {
		return ctx.Store.Interval(id, featureID, ctx.AsOfMillis, n)
	})
}

// EMAExecutor computes the exponential moving average of Input over the
// last Period samples via go-talib, which requires a longer lookback than
// Period to settle so the read window is padded.
type EMAExecutor struct{ cfg config.MAConfig }

func NewEMA(cfg config.MAConfig) *EMAExecutor { return &EMAExecutor{cfg: cfg} }

func (e *EMAExecutor) Execute(ctx Context) ([]model.Insight, error) {
	xs := maWindowN(ctx, e.cfg.Input, e.cfg.Period*3)
	if len(xs) < e.cfg.Period {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}
	out := talib.Ema(xs, e.cfg.Period)
	value := out[len(out)-1]
	return finalize(ctx, e.cfg.Output, value, e.cfg.FillStrategy), nil
}

// RSIExecutor computes the relative strength index of Input over Period
// samples via go-talib.
type RSIExecutor struct{ cfg config.MAConfig }

func NewRSI(cfg config.MAConfig) *RSIExecutor { return &RSIExecutor{cfg: cfg} }

func (e *RSIExecutor) Execute(ctx Context) ([]model.Insight, error) {
	xs := maWindowN(ctx, e.cfg.Input, e.cfg.Period*3)
	if len(xs) < e.cfg.Period+1 {
		return emptyInputInsight(ctx, e.cfg.Output, e.cfg.FillStrategy), nil
	}
	out := talib.Rsi(xs, e.cfg.Period)
	value := out[len(out)-1]
	return finalize(ctx, e.cfg.Output, value, e.cfg.FillStrategy), nil
}

// MACDExecutor computes MACD/signal/histogram via go-talib, emitting three
// named outputs under OutputPrefix.
type MACDExecutor struct{ cfg config.MACDConfig }

func NewMACD(cfg config.MACDConfig) *MACDExecutor { return &MACDExecutor{cfg: cfg} }

func (e *MACDExecutor) Execute(ctx Context) ([]model.Insight, error) {
	lookback := (e.cfg.SlowPeriod + e.cfg.SignalPeriod) * 3
	xs := maWindowN(ctx, e.cfg.Input, lookback)
	if len(xs) < e.cfg.SlowPeriod+e.cfg.SignalPeriod {
		return nil, nil
	}

	macd, signal, hist := talib.Macd(xs, e.cfg.FastPeriod, e.cfg.SlowPeriod, e.cfg.SignalPeriod)
	last := len(macd) - 1

	p := e.cfg.OutputPrefix
	var out []model.Insight
	out = append(out, finalize(ctx, p+"_macd", macd[last], e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_signal", signal[last], e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_histogram", hist[last], e.cfg.FillStrategy)...)
	return out, nil
}

// BBExecutor computes Bollinger Bands (upper/middle/lower) via go-talib,
// plus the derived oscillator (where the latest price sits within the
// band, 0 at the lower band and 1 at the upper) and width (band span
// relative to the middle band), emitting five named outputs under
// OutputPrefix.
type BBExecutor struct{ cfg config.BBConfig }

func NewBB(cfg config.BBConfig) *BBExecutor { return &BBExecutor{cfg: cfg} }

func (e *BBExecutor) Execute(ctx Context) ([]model.Insight, error) {
	xs := maWindowN(ctx, e.cfg.Input, e.cfg.Period*3)
	if len(xs) < e.cfg.Period {
		return nil, nil
	}

	upper, middle, lower := talib.BBands(xs, e.cfg.Period, e.cfg.NumStdDev, e.cfg.NumStdDev, talib.SMA)
	last := len(middle) - 1
	price := xs[len(xs)-1]

	oscillator := math.NaN()
	if upper[last] != lower[last] {
		oscillator = (price - lower[last]) / (upper[last] - lower[last])
	}
	width := math.NaN()
	if middle[last] != 0 {
		width = (upper[last] - lower[last]) / middle[last]
	}

	p := e.cfg.OutputPrefix
	var out []model.Insight
	out = append(out, finalize(ctx, p+"_upper", upper[last], e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_middle", middle[last], e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_lower", lower[last], e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_oscillator", oscillator, e.cfg.FillStrategy)...)
	out = append(out, finalize(ctx, p+"_width", width, e.cfg.FillStrategy)...)
	return out, nil
}
