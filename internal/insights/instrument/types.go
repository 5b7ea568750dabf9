/*
Package instrument holds the immutable universe of tradeable instruments the
feature pipeline reads and writes against: concrete venue instruments plus
the synthetic aggregates materialized from them at pipeline build.
*/
package instrument

import (
	"github.com/google/uuid"
	"github.com/yanun0323/decimal"
)

// Kind is the instrument category.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSpot
	KindPerpetual
	KindFuture
	KindOption
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindSpot:
		return "spot"
	case KindPerpetual:
		return "perpetual"
	case KindFuture:
		return "future"
	case KindOption:
		return "option"
	case KindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// ParseKind parses the YAML/string spelling of an instrument kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "", "unknown":
		return KindUnknown, true
	case "spot":
		return KindSpot, true
	case "perpetual":
		return KindPerpetual, true
	case "future":
		return KindFuture, true
	case "option":
		return KindOption, true
	case "index":
		return KindIndex, true
	default:
		return KindUnknown, false
	}
}

// UnmarshalYAML implements yaml.Unmarshaler so Kind can be used directly in
// YAML-tagged selector configs.
func (k *Kind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, ok := ParseKind(raw)
	if !ok {
		return &unknownKindError{raw: raw}
	}
	*k = parsed
	return nil
}

type unknownKindError struct{ raw string }

func (e *unknownKindError) Error() string {
	return "unknown instrument kind: " + e.raw
}

// Status is the trading status of an instrument.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusTrading
	StatusHalted
	StatusSettled
)

// OptionKind distinguishes calls from puts for option instruments.
type OptionKind uint8

const (
	OptionKindNone OptionKind = iota
	OptionKindCall
	OptionKindPut
)

// ID identifies an instrument: derived from symbol and venue for concrete
// instruments, a group-tuple hash for synthetics.
type ID = uuid.UUID

// AssetID identifies a base/quote/margin asset.
type AssetID = uuid.UUID

// VenueID identifies a trading venue. The Index venue is reserved for
// synthetic instruments whose group-by mask does not include venue.
type VenueID = uuid.UUID

// Venue describes a trading venue.
type Venue struct {
	ID   VenueID
	Name string
}

// IndexVenueName is the stand-in venue for synthetics that aggregate across
// venues (i.e. the group-by mask does not select the venue dimension).
const IndexVenueName = "INDEX"

// Asset describes a base/quote/margin currency or token.
type Asset struct {
	ID   AssetID
	Name string
}

// Instrument is the identity and metadata for a tradeable contract, or a
// materialized synthetic aggregate over a set of concrete instruments.
type Instrument struct {
	ID      ID
	Symbol  string
	VenueID VenueID
	Kind    Kind

	BaseAssetID   AssetID
	QuoteAssetID  AssetID
	MarginAssetID AssetID // zero value when not applicable

	StrikePrice *decimal.Decimal
	Maturity    *int64 // unix millis, nil when not applicable
	OptionKind  OptionKind

	ContractSize      decimal.Decimal
	PricePrecision    int
	QuantityPrecision int
	LotSize           decimal.Decimal
	TickSize          decimal.Decimal

	Status Status

	// Synthetic instruments are materialized aggregates; Members holds the
	// constituent concrete instrument ids. Concrete instruments have a nil
	// Members slice.
	Synthetic bool
	Members   []ID
}
