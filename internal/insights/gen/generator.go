/*
Package gen produces deterministic synthetic trade and tick events for
smoke-testing a pipeline without a live feed (cmd/insights --synthetic).
*/
package gen

import (
	"time"

	"github.com/yanun0323/decimal"

	"insights-pipeline/internal/insights/event"
	"insights-pipeline/internal/insights/instrument"
)

// Generator cycles through a fixed instrument set, emitting alternating
// trade and tick events with a slow deterministic price walk, grounded on
// internal/mdg/generator.go's round-robin symbol cycling and
// basePrice+index price derivation.
type Generator struct {
	instruments []instrument.ID
	basePrice   int64
	baseQty     int64
	spread      int64
	index       int
	step        int64
	side        event.Side
}

// NewGenerator builds a Generator over the given instrument set.
func NewGenerator(instruments []instrument.ID, basePrice, baseQty, spread int64) *Generator {
	if baseQty <= 0 {
		baseQty = 1
	}
	if spread < 0 {
		spread = 0
	}
	return &Generator{
		instruments: instruments,
		basePrice:   basePrice,
		baseQty:     baseQty,
		spread:      spread,
		side:        event.SideBuy,
	}
}

// NextTrade creates the next trade print in sequence.
func (g *Generator) NextTrade(now time.Time) event.Trade {
	id := g.advance()
	price := g.basePrice + g.step
	side := g.side
	if g.side == event.SideBuy {
		g.side = event.SideSell
	} else {
		g.side = event.SideBuy
	}
	return event.Trade{
		EventTimeMillis: now.UnixMilli(),
		InstrumentID:    id,
		Side:            side,
		Price:           decimal.NewFromInt(price),
		Quantity:        decimal.NewFromInt(g.baseQty),
	}
}

// NextTick creates the next top-of-book quote in sequence.
func (g *Generator) NextTick(now time.Time) event.Tick {
	id := g.advance()
	price := g.basePrice + g.step
	return event.Tick{
		EventTimeMillis: now.UnixMilli(),
		InstrumentID:    id,
		BidPrice:        decimal.NewFromInt(price - g.spread),
		BidQuantity:     decimal.NewFromInt(g.baseQty),
		AskPrice:        decimal.NewFromInt(price + g.spread),
		AskQuantity:     decimal.NewFromInt(g.baseQty),
	}
}

func (g *Generator) advance() instrument.ID {
	id := g.instruments[g.index]
	g.index = (g.index + 1) % len(g.instruments)
	if g.index == 0 {
		g.step++
	}
	return id
}
