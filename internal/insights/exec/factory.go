package exec

import (
	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/ierrors"
)

// New resolves a FeatureConfig's exactly-one typed payload into its
// concrete Executor. Validate (internal/insights/config/validate.go) has
// already rejected configs with zero or multiple payloads set, so the
// default case here only guards against a kind this build doesn't know.
func New(f config.FeatureConfig) (Executor, error) {
	switch {
	case f.Range != nil:
		return NewRange(*f.Range), nil
	case f.DualRange != nil:
		return NewDualRange(*f.DualRange), nil
	case f.TwoValue != nil:
		return NewTwoValue(*f.TwoValue), nil
	case f.Lag != nil:
		return NewLag(*f.Lag), nil
	case f.OHLCV != nil:
		return NewOHLCV(*f.OHLCV), nil
	case f.SMA != nil:
		return NewSMA(*f.SMA), nil
	case f.EMA != nil:
		return NewEMA(*f.EMA), nil
	case f.MACD != nil:
		return NewMACD(*f.MACD), nil
	case f.BB != nil:
		return NewBB(*f.BB), nil
	case f.RSI != nil:
		return NewRSI(*f.RSI), nil
	case f.StdDev != nil:
		return NewStdDev(*f.StdDev), nil
	case f.Sum != nil:
		return NewSum(*f.Sum), nil
	case f.Count != nil:
		return NewCount(*f.Count), nil
	case f.Spread != nil:
		return NewSpread(*f.Spread), nil
	case f.HistVol != nil:
		return NewHistVol(*f.HistVol), nil
	case f.CumSum != nil:
		return NewCumSum(*f.CumSum), nil
	case f.PctChange != nil:
		return NewPctChange(*f.PctChange), nil
	case f.VWAP != nil:
		return NewVWAP(*f.VWAP), nil
	default:
		return nil, ierrors.NewConfigInvalid("feature " + f.ID + " has no recognized payload")
	}
}
