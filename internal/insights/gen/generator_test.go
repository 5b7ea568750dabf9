package gen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"insights-pipeline/internal/insights/instrument"
)

func TestGenerator_CyclesInstrumentsAndWalksPrice(t *testing.T) {
	a := instrument.ID{1}
	b := instrument.ID{2}
	g := NewGenerator([]instrument.ID{a, b}, 100, 2, 1)

	now := time.Unix(0, 0).UTC()
	t1 := g.NextTrade(now)
	t2 := g.NextTrade(now)
	t3 := g.NextTrade(now)

	assert.Equal(t, a, t1.InstrumentID)
	assert.Equal(t, b, t2.InstrumentID)
	assert.Equal(t, a, t3.InstrumentID)

	v1, _ := t1.Price.Float64()
	v3, _ := t3.Price.Float64()
	assert.Less(t, v1, v3, "price should have walked forward after a full cycle")
}

func TestGenerator_TickHasSpreadAroundMid(t *testing.T) {
	a := instrument.ID{1}
	g := NewGenerator([]instrument.ID{a}, 100, 1, 2)

	tick := g.NextTick(time.Unix(0, 0).UTC())
	bid, _ := tick.BidPrice.Float64()
	ask, _ := tick.AskPrice.Float64()
	assert.Less(t, bid, ask)
}
