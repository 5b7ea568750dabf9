package event

// Raw field names are the feature_ids the state store's write path uses for
// ingested raw events, and the names a FeatureConfig's `inputs` may resolve
// to when they are not another node's declared output (spec §3 invariant:
// "inputs must resolve either to raw event fields ... or to an output name
// produced earlier").
const (
	FieldTradePrice    = "trade_price"
	FieldTradeQuantity = "trade_quantity"
	FieldTradeSide     = "trade_side"
	FieldTradeNotional = "trade_notional"

	FieldBidPrice    = "bid_price"
	FieldBidQuantity = "bid_quantity"
	FieldAskPrice    = "ask_price"
	FieldAskQuantity = "ask_quantity"
	FieldMidPrice    = "mid_price"
	FieldSpread      = "spread"

	FieldBookBestBidPrice    = "book_best_bid_price"
	FieldBookBestBidQuantity = "book_best_bid_quantity"
	FieldBookBestAskPrice    = "book_best_ask_price"
	FieldBookBestAskQuantity = "book_best_ask_quantity"
)

// IsRawField reports whether name is a raw-event-derived feature_id rather
// than a feature-produced output name.
func IsRawField(name string) bool {
	switch name {
	case FieldTradePrice, FieldTradeQuantity, FieldTradeSide, FieldTradeNotional,
		FieldBidPrice, FieldBidQuantity, FieldAskPrice, FieldAskQuantity, FieldMidPrice, FieldSpread,
		FieldBookBestBidPrice, FieldBookBestBidQuantity, FieldBookBestAskPrice, FieldBookBestAskQuantity:
		return true
	default:
		return false
	}
}
