package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yanun0323/decimal"

	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/event"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/obs"
)

func newTestRegistry(t *testing.T) (*instrument.Registry, instrument.ID) {
	t.Helper()
	reg := instrument.New()
	venue := reg.AddVenue("binance")
	base := reg.AddAsset("BTC")
	quote := reg.AddAsset("USDT")
	id := reg.AddInstrument(instrument.Instrument{
		Symbol:       "BTCUSDT",
		VenueID:      venue,
		Kind:         instrument.KindSpot,
		BaseAssetID:  base,
		QuoteAssetID: quote,
		ContractSize: decimal.NewFromInt(1),
		LotSize:      decimal.Zero,
		TickSize:     decimal.Zero,
		Status:       instrument.StatusTrading,
	})
	return reg, id
}

// End-to-end: ingest trade prints, run a handful of ticks and confirm an
// SMA feature emits Insights once warmup has elapsed (spec §8 scenario 1).
func TestPipeline_IngestAndTick_EmitsAfterWarmup(t *testing.T) {
	reg, instID := newTestRegistry(t)

	cfg := config.PipelineConfig{
		Name:               "smoke",
		Version:            "v1",
		WarmupSteps:        2,
		StateTTLSeconds:     3600,
		MinIntervalSeconds: 1,
		Parallel:           false,
		Features: []config.FeatureConfig{
			{
				ID:   "sma_price",
				Kind: "sma",
				SMA: &config.MAConfig{
					Input:  event.FieldTradePrice,
					Output: "sma_price",
					Period: 3,
				},
			},
		},
	}
	require.NoError(t, cfg.Validate())

	metrics := obs.NewMetrics()
	p, err := New(cfg, reg, metrics, 16)
	require.NoError(t, err)

	base := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC).UnixMilli()
	for i := int64(0); i < 5; i++ {
		p.IngestTrade(event.Trade{
			EventTimeMillis: base + i*1000,
			InstrumentID:    instID,
			Price:           decimal.NewFromInt(100 + i),
			Quantity:        decimal.NewFromInt(1),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	var received int
	timeout := time.After(5 * time.Second)
loop:
	for {
		select {
		case _, ok := <-p.Sink().Receive():
			if !ok {
				break loop
			}
			received++
			if received >= 1 {
				cancel()
			}
		case <-timeout:
			cancel()
			break loop
		}
	}
	<-done

	require.GreaterOrEqual(t, received, 1, "expected at least one insight once warmup elapsed")
}

func TestPipeline_OutOfOrderTradeDropped(t *testing.T) {
	reg, instID := newTestRegistry(t)

	cfg := config.PipelineConfig{
		Name:               "smoke",
		WarmupSteps:        0,
		StateTTLSeconds:     3600,
		MinIntervalSeconds: 1,
		Features: []config.FeatureConfig{
			{
				ID:   "sma_price",
				Kind: "sma",
				SMA: &config.MAConfig{
					Input:  event.FieldTradePrice,
					Output: "sma_price",
					Period: 3,
				},
			},
		},
	}
	require.NoError(t, cfg.Validate())

	metrics := obs.NewMetrics()
	p, err := New(cfg, reg, metrics, 4)
	require.NoError(t, err)

	now := time.Now().UnixMilli()
	p.IngestTrade(event.Trade{EventTimeMillis: now, InstrumentID: instID, Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1)})
	p.IngestTrade(event.Trade{EventTimeMillis: now - 5000, InstrumentID: instID, Price: decimal.NewFromInt(99), Quantity: decimal.NewFromInt(1)})

	require.Equal(t, uint64(1), metrics.Snapshot().OutOfOrderDropped)
}
