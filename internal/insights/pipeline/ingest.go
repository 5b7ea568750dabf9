package pipeline

import (
	"insights-pipeline/internal/insights/event"
)

// IngestTrade writes a trade print's fields into the state store under the
// raw field names event.FieldTradePrice/FieldTradeQuantity/FieldTradeSide/
// FieldTradeNotional, the single write path spec §4.3/§5 describes.
// Out-of-order trades (older than the instrument's latest observed event
// time) are dropped and counted, never written.
func (p *Pipeline) IngestTrade(t event.Trade) {
	if !p.store.Observe(t.InstrumentID, t.EventTimeMillis) {
		p.metrics.IncOutOfOrderDropped()
		return
	}
	price, _ := t.Price.Float64()
	qty, _ := t.Quantity.Float64()
	p.store.Write(t.InstrumentID, event.FieldTradePrice, t.EventTimeMillis, price)
	p.store.Write(t.InstrumentID, event.FieldTradeQuantity, t.EventTimeMillis, qty)
	p.store.Write(t.InstrumentID, event.FieldTradeSide, t.EventTimeMillis, float64(t.Side))
	p.store.Write(t.InstrumentID, event.FieldTradeNotional, t.EventTimeMillis, price*qty)
}

// IngestTick writes a top-of-book quote's fields, plus the derived
// mid_price and spread raw fields nodes commonly read without a dedicated
// Spread node.
func (p *Pipeline) IngestTick(t event.Tick) {
	if !p.store.Observe(t.InstrumentID, t.EventTimeMillis) {
		p.metrics.IncOutOfOrderDropped()
		return
	}
	bidPrice, _ := t.BidPrice.Float64()
	bidQty, _ := t.BidQuantity.Float64()
	askPrice, _ := t.AskPrice.Float64()
	askQty, _ := t.AskQuantity.Float64()

	p.store.Write(t.InstrumentID, event.FieldBidPrice, t.EventTimeMillis, bidPrice)
	p.store.Write(t.InstrumentID, event.FieldBidQuantity, t.EventTimeMillis, bidQty)
	p.store.Write(t.InstrumentID, event.FieldAskPrice, t.EventTimeMillis, askPrice)
	p.store.Write(t.InstrumentID, event.FieldAskQuantity, t.EventTimeMillis, askQty)
	p.store.Write(t.InstrumentID, event.FieldMidPrice, t.EventTimeMillis, (bidPrice+askPrice)/2)
	p.store.Write(t.InstrumentID, event.FieldSpread, t.EventTimeMillis, askPrice-bidPrice)
}

// IngestBookUpdate writes the best bid/ask levels of a depth update. Only
// the top level is retained as a raw field; deeper levels are available to
// downstream peer consumers via the raw event itself, not the state store.
func (p *Pipeline) IngestBookUpdate(b event.BookUpdate) {
	if !p.store.Observe(b.InstrumentID, b.EventTimeMillis) {
		p.metrics.IncOutOfOrderDropped()
		return
	}
	if len(b.Bids) > 0 {
		price, _ := b.Bids[0].Price.Float64()
		qty, _ := b.Bids[0].Quantity.Float64()
		p.store.Write(b.InstrumentID, event.FieldBookBestBidPrice, b.EventTimeMillis, price)
		p.store.Write(b.InstrumentID, event.FieldBookBestBidQuantity, b.EventTimeMillis, qty)
	}
	if len(b.Asks) > 0 {
		price, _ := b.Asks[0].Price.Float64()
		qty, _ := b.Asks[0].Quantity.Float64()
		p.store.Write(b.InstrumentID, event.FieldBookBestAskPrice, b.EventTimeMillis, price)
		p.store.Write(b.InstrumentID, event.FieldBookBestAskQuantity, b.EventTimeMillis, qty)
	}
}

// IngestRaw dispatches a tagged Raw event to the matching typed ingest
// method.
func (p *Pipeline) IngestRaw(r event.Raw) {
	switch r.Kind {
	case event.KindTrade:
		p.IngestTrade(r.Trade)
	case event.KindTick:
		p.IngestTick(r.Tick)
	case event.KindBookUpdate:
		p.IngestBookUpdate(r.BookUpdate)
	}
}
