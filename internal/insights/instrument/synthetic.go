package instrument

import (
	"crypto/sha1"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/yanun0323/decimal"
)

// MaterializeSynthetics builds one synthetic instrument per distinct group
// tuple of the grouped attributes (per GroupBy mask) across concrete
// instruments matching sel, and returns their ids in deterministic order.
// Grounded on original_source/arkin-insights/src/synthetics.rs: venue
// becomes the Index venue when the venue dimension is not part of the
// group-by mask, and the synthetic id is a stable hash of the group tuple
// so it is reproducible across runs given the same config (spec §4.1).
//
// Calling MaterializeSynthetics again with the same sel/groupBy is
// idempotent: existing synthetics are returned as-is and their membership
// is refreshed from the current concrete universe (safe only at build time,
// before the run begins, per spec's "materialized at pipeline start").
func (r *Registry) MaterializeSynthetics(sel Selector, groupBy GroupBy) []ID {
	concreteFalse := false
	concreteSel := sel
	concreteSel.Synthetic = &concreteFalse

	r.mu.Lock()
	defer r.mu.Unlock()

	groups := make(map[groupKey][]ID)
	var order []groupKey
	for _, id := range r.insertOrder {
		inst := r.instruments[id]
		if inst.Synthetic {
			continue
		}
		if !concreteSel.matches(inst, r) {
			continue
		}
		key := r.groupKeyFor(inst, groupBy)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], id)
	}

	venueID := r.indexVenueID()

	ids := make([]ID, 0, len(order))
	for _, key := range order {
		members := sortedIDs(groups[key])
		synthID, ok := r.syntheticByKey[key]
		if !ok {
			synthID = stableSyntheticID(key, members)
			r.syntheticByKey[key] = synthID
		}

		venue := venueID
		if groupBy.Venue && len(members) > 0 {
			venue = r.instruments[members[0]].VenueID
		}

		inst := &Instrument{
			ID:                synthID,
			Symbol:            syntheticSymbol(key, groupBy),
			VenueID:           venue,
			Kind:              key.kind,
			BaseAssetID:       r.assetByName[key.baseAsset],
			QuoteAssetID:      r.assetByName[key.quoteAsset],
			ContractSize:      decimal.NewFromInt(1),
			PricePrecision:    8,
			QuantityPrecision: 8,
			LotSize:           decimal.Zero,
			TickSize:          decimal.Zero,
			Status:            StatusTrading,
			Synthetic:         true,
			Members:           members,
		}
		if _, exists := r.instruments[synthID]; !exists {
			r.insertOrder = append(r.insertOrder, synthID)
		}
		r.instruments[synthID] = inst
		ids = append(ids, synthID)
	}
	return ids
}

func (r *Registry) indexVenueID() VenueID {
	if id, ok := r.venueByName[IndexVenueName]; ok {
		return id
	}
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("venue:"+IndexVenueName))
	r.venues[id] = Venue{ID: id, Name: IndexVenueName}
	r.venueByName[IndexVenueName] = id
	return id
}

// stableSyntheticID hashes the group tuple and member set into a
// reproducible id, independent of map iteration order.
func stableSyntheticID(key groupKey, members []ID) uuid.UUID {
	h := sha1.New()
	fmt.Fprintf(h, "synthetic|%s|%s|%d|%s", key.baseAsset, key.quoteAsset, key.kind, key.venue)
	for _, m := range members {
		fmt.Fprintf(h, "|%s", m.String())
	}
	sum := h.Sum(nil)
	var id uuid.UUID
	copy(id[:], sum[:16])
	id[6] = (id[6] & 0x0f) | 0x50 // version 5-like marker
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

func syntheticSymbol(key groupKey, g GroupBy) string {
	parts := make([]string, 0, 4)
	if g.BaseAsset {
		parts = append(parts, key.baseAsset)
	}
	if g.QuoteAsset {
		parts = append(parts, key.quoteAsset)
	}
	if g.InstrumentType {
		parts = append(parts, key.kind.String())
	}
	if g.Venue {
		parts = append(parts, key.venue)
	}
	if len(parts) == 0 {
		return "SYNTH-ALL"
	}
	sort.Strings(parts)
	out := "SYNTH"
	for _, p := range parts {
		out += "-" + p
	}
	return out
}
