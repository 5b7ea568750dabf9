/*
Package event defines the discriminated union of raw market events the
pipeline ingests: Trade, Tick and BookUpdate (spec §3). Numeric fields use
github.com/yanun0323/decimal for arbitrary precision, matching the teacher's
existing (if lightly used) dependency on that package.
*/
package event

import (
	"github.com/yanun0323/decimal"

	"insights-pipeline/internal/insights/instrument"
)

// Side is the aggressor side of a trade.
type Side uint8

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

// Kind discriminates the raw event union.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindTrade
	KindTick
	KindBookUpdate
)

// PriceLevel is one (price, quantity) entry of an order book side.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Trade is a single executed trade print.
type Trade struct {
	EventTimeMillis int64
	InstrumentID    instrument.ID
	TradeID         string
	Side            Side
	Price           decimal.Decimal
	Quantity        decimal.Decimal
}

// Tick is a top-of-book quote update.
type Tick struct {
	EventTimeMillis int64
	InstrumentID    instrument.ID
	TickID          string
	BidPrice        decimal.Decimal
	BidQuantity      decimal.Decimal
	AskPrice        decimal.Decimal
	AskQuantity      decimal.Decimal
}

// BookUpdate is a (possibly partial) order book depth update.
type BookUpdate struct {
	EventTimeMillis int64
	InstrumentID    instrument.ID
	UpdateID        string
	Bids            []PriceLevel
	Asks            []PriceLevel
}

// Raw is the tagged union wrapper pushed through the ingestion queue.
type Raw struct {
	Kind       Kind
	Trade      Trade
	Tick       Tick
	BookUpdate BookUpdate
}

// EventTimeMillis returns the event time regardless of the underlying kind.
func (r Raw) EventTimeMillis() int64 {
	switch r.Kind {
	case KindTrade:
		return r.Trade.EventTimeMillis
	case KindTick:
		return r.Tick.EventTimeMillis
	case KindBookUpdate:
		return r.BookUpdate.EventTimeMillis
	default:
		return 0
	}
}

// InstrumentID returns the instrument the event belongs to.
func (r Raw) InstrumentID() instrument.ID {
	switch r.Kind {
	case KindTrade:
		return r.Trade.InstrumentID
	case KindTick:
		return r.Tick.InstrumentID
	case KindBookUpdate:
		return r.BookUpdate.InstrumentID
	default:
		return instrument.ID{}
	}
}

// NewTrade wraps a Trade as a Raw event.
func NewTrade(t Trade) Raw { return Raw{Kind: KindTrade, Trade: t} }

// NewTick wraps a Tick as a Raw event.
func NewTick(t Tick) Raw { return Raw{Kind: KindTick, Tick: t} }

// NewBookUpdate wraps a BookUpdate as a Raw event.
func NewBookUpdate(b BookUpdate) Raw { return Raw{Kind: KindBookUpdate, BookUpdate: b} }
