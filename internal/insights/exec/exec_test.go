package exec

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/event"
	"insights-pipeline/internal/insights/fill"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/insights/store"
)

func newCtx(s *store.Store, id instrument.ID, asOfMillis int64) Context {
	return Context{
		PipelineID: uuid.New(),
		Store:      s,
		AsOfMillis: asOfMillis,
		Inputs:     []instrument.ID{id},
		Output:     id,
	}
}

func seedConstant(s *store.Store, id instrument.ID, featureID string, value float64, n int, stepMillis int64) int64 {
	var t int64
	for i := 0; i < n; i++ {
		t = int64(i+1) * stepMillis
		s.Observe(id, t)
		s.Write(id, featureID, t, value)
	}
	return t
}

// SMA of a constant-valued series must equal that constant exactly.
func TestSMA_ConstantSeries(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	last := seedConstant(s, id, "trade_price", 100.0, 10, 1000)

	exec := NewSMA(config.MAConfig{Input: "trade_price", Output: "sma_10", Period: 10, FillStrategy: fill.Skip})
	out, err := exec.Execute(newCtx(s, id, last))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 100.0, out[0].Value)
}

// Range Last/First return the window's newest/oldest sample rather than
// falling through to a mean.
func TestRange_LastAndFirst(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	for i, p := range []float64{10, 20, 30} {
		ts := int64(i+1) * 1000
		s.Observe(id, ts)
		s.Write(id, "mid_price", ts, p)
	}

	lastExec := NewRange(config.RangeConfig{Input: "mid_price", Output: "range_last", Algo: config.RangeLast, Data: config.RangeData{WindowSeconds: 60}, FillStrategy: fill.Skip})
	out, err := lastExec.Execute(newCtx(s, id, 3000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 30.0, out[0].Value)

	firstExec := NewRange(config.RangeConfig{Input: "mid_price", Output: "range_first", Algo: config.RangeFirst, Data: config.RangeData{WindowSeconds: 60}, FillStrategy: fill.Skip})
	out, err = firstExec.Execute(newCtx(s, id, 3000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, out[0].Value)
}

// VWAP weights each price sample by its matching trade_quantity sample
// instead of averaging the price series plainly.
func TestVWAP_WeightsByQuantity(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	prices := []float64{100, 110, 105}
	quantities := []float64{1, 2, 1}
	for i := range prices {
		ts := int64(i+1) * 1000
		s.Observe(id, ts)
		s.Write(id, "trade_price", ts, prices[i])
		s.Write(id, "trade_quantity", ts, quantities[i])
	}

	exec := NewVWAP(config.MAConfig{Input: "trade_price", QuantityInput: "trade_quantity", Output: "vwap", Period: 3, FillStrategy: fill.Skip})
	out, err := exec.Execute(newCtx(s, id, 3000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 106.25, out[0].Value, 1e-9)
}

// TwoValue Imbalance computes (a-b)/(a+b) from the most recent bid/ask-style
// samples, with no windowing (spec §8 scenario 2).
func TestTwoValue_Imbalance(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	s.Observe(id, 1000)
	s.Write(id, "bid_qty", 1000, 60.0)
	s.Write(id, "ask_qty", 1000, 40.0)

	exec := NewTwoValue(config.TwoValueConfig{
		InputA: "bid_qty", InputB: "ask_qty", Output: "qty_imbalance",
		Algo: config.TwoValueImbalance, FillStrategy: fill.Skip,
	})
	out, err := exec.Execute(newCtx(s, id, 1000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.2, out[0].Value, 1e-9)
}

// TwoValue Ratio/Spread compute a/b and a-b from the most recent samples.
func TestTwoValue_RatioAndSpread(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	s.Observe(id, 1000)
	s.Write(id, "a", 1000, 10.0)
	s.Write(id, "b", 1000, 4.0)

	ratioExec := NewTwoValue(config.TwoValueConfig{InputA: "a", InputB: "b", Output: "a_over_b", Algo: config.TwoValueRatio, FillStrategy: fill.Skip})
	out, err := ratioExec.Execute(newCtx(s, id, 1000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2.5, out[0].Value)

	spreadExec := NewTwoValue(config.TwoValueConfig{InputA: "a", InputB: "b", Output: "a_minus_b", Algo: config.TwoValueSpread, FillStrategy: fill.Skip})
	out, err = spreadExec.Execute(newCtx(s, id, 1000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 6.0, out[0].Value)
}

// TwoValue Elasticity computes (delta a/a)/(delta b/b) between the current
// and previous sample of each input, the point-elasticity addition
// alongside Ratio/Imbalance/Spread/Difference.
func TestTwoValue_Elasticity(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	s.Observe(id, 1000)
	s.Write(id, "a", 1000, 100.0)
	s.Write(id, "b", 1000, 50.0)
	s.Observe(id, 2000)
	s.Write(id, "a", 2000, 110.0)
	s.Write(id, "b", 2000, 55.0)

	exec := NewTwoValue(config.TwoValueConfig{InputA: "a", InputB: "b", Output: "elasticity", Algo: config.TwoValueElasticity, FillStrategy: fill.Skip})
	out, err := exec.Execute(newCtx(s, id, 2000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0, out[0].Value, 1e-9)
}

// A negative operand disqualifies Imbalance (matching the Rust original's
// non-negative guard) and the node emits nothing for that tick.
func TestTwoValue_ImbalanceRejectsNegative(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	s.Observe(id, 1000)
	s.Write(id, "bid_qty", 1000, -5.0)
	s.Write(id, "ask_qty", 1000, 40.0)

	exec := NewTwoValue(config.TwoValueConfig{
		InputA: "bid_qty", InputB: "ask_qty", Output: "qty_imbalance",
		Algo: config.TwoValueImbalance, FillStrategy: fill.Skip,
	})
	out, err := exec.Execute(newCtx(s, id, 1000))
	require.NoError(t, err)
	assert.Nil(t, out)
}

// PctChange against a zero-valued previous sample (spec §8 scenario 3) must
// resolve through the fill strategy, never panic on division by zero.
func TestPctChange_ZeroDenominatorUsesFillStrategy(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	s.Observe(id, 1000)
	s.Write(id, "position", 1000, 0.0)
	s.Observe(id, 2000)
	s.Write(id, "position", 2000, 50.0)

	exec := NewPctChange(config.PctChangeConfig{Input: "position", Output: "position_pct_change", Periods: 1, FillStrategy: fill.ZeroFill})
	out, err := exec.Execute(newCtx(s, id, 2000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].Value)
}

// PctChange with Skip and a zero denominator must emit nothing for that
// tick rather than a NaN/Inf value.
func TestPctChange_ZeroDenominatorSkip(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	s.Observe(id, 1000)
	s.Write(id, "position", 1000, 0.0)
	s.Observe(id, 2000)
	s.Write(id, "position", 2000, 50.0)

	exec := NewPctChange(config.PctChangeConfig{Input: "position", Output: "position_pct_change", Periods: 1, FillStrategy: fill.Skip})
	out, err := exec.Execute(newCtx(s, id, 2000))
	require.NoError(t, err)
	assert.Nil(t, out)
}

// OHLCV aggregates every trade print in the window into a single bar,
// exercising the documented scenario (spec §8 scenario 4): trades
// (100,1,buy), (110,2,sell), (105,1,buy) over a 60s window yield
// vwap=106.25, buy_volume=2, sell_volume=2.
func TestOHLCV_Bar(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	trades := []struct {
		price float64
		qty   float64
		side  event.Side
	}{
		{100, 1, event.SideBuy},
		{110, 2, event.SideSell},
		{105, 1, event.SideBuy},
	}
	for i, tr := range trades {
		ts := int64(i+1) * 1000
		s.Observe(id, ts)
		s.Write(id, "trade_price", ts, tr.price)
		s.Write(id, "trade_quantity", ts, tr.qty)
		s.Write(id, "trade_side", ts, float64(tr.side))
	}

	exec := NewOHLCV(config.OHLCVConfig{
		Input: "trade_price", QuantityInput: "trade_quantity", SideInput: "trade_side",
		OutputPrefix: "bar_1s", WindowSeconds: 60, FillStrategy: fill.Skip,
	})
	out, err := exec.Execute(newCtx(s, id, 3000))
	require.NoError(t, err)
	require.Len(t, out, 13)

	byFeature := map[string]float64{}
	for _, insight := range out {
		byFeature[insight.FeatureID] = insight.Value
	}
	assert.Equal(t, 100.0, byFeature["bar_1s_open"])
	assert.Equal(t, 110.0, byFeature["bar_1s_high"])
	assert.Equal(t, 100.0, byFeature["bar_1s_low"])
	assert.Equal(t, 105.0, byFeature["bar_1s_close"])
	assert.InDelta(t, 106.25, byFeature["bar_1s_vwap"], 1e-9)
	assert.Equal(t, 4.0, byFeature["bar_1s_volume"])
	assert.Equal(t, 2.0, byFeature["bar_1s_buy_volume"])
	assert.Equal(t, 2.0, byFeature["bar_1s_sell_volume"])
	assert.Equal(t, 3.0, byFeature["bar_1s_trade_count"])
	assert.Equal(t, 2.0, byFeature["bar_1s_buy_trade_count"])
	assert.Equal(t, 1.0, byFeature["bar_1s_sell_trade_count"])
}

// Lag with a ForwardFill strategy and insufficient history reuses the
// output series' own last value instead of emitting NaN.
func TestLag_ForwardFillWhenHistoryShort(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	s.Observe(id, 1000)
	s.Write(id, "mid_price", 1000, 10.0)
	s.Write(id, "lag_1", 1000, 10.0)

	exec := NewLag(config.LagConfig{Input: "mid_price", Output: "lag_1", Algo: config.LagDifference, Periods: 1, FillStrategy: fill.ForwardFill})
	out, err := exec.Execute(newCtx(s, id, 1000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, out[0].Value)
}

// Spread computes ask-minus-bid from the most recent samples of each side.
func TestSpread_AskMinusBid(t *testing.T) {
	s := store.New(3600)
	id := instrument.ID(uuid.New())
	s.Observe(id, 1000)
	s.Write(id, "bid_price", 1000, 99.5)
	s.Write(id, "ask_price", 1000, 100.5)

	exec := NewSpread(config.SpreadConfig{BidInput: "bid_price", AskInput: "ask_price", Output: "spread", FillStrategy: fill.Skip})
	out, err := exec.Execute(newCtx(s, id, 1000))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0, out[0].Value, 1e-9)
}

// Factory dispatches each tagged-union payload to its matching executor
// type.
func TestNew_DispatchesByPayload(t *testing.T) {
	fc := config.FeatureConfig{ID: "f1", Kind: "sma", SMA: &config.MAConfig{Input: "x", Output: "y", Period: 5}}
	e, err := New(fc)
	require.NoError(t, err)
	_, ok := e.(*SMAExecutor)
	assert.True(t, ok)
}

func TestNew_RejectsEmptyPayload(t *testing.T) {
	fc := config.FeatureConfig{ID: "f2", Kind: "unknown"}
	_, err := New(fc)
	assert.Error(t, err)
}
