package instrument

import "testing"

func seedRegistry(t *testing.T) (*Registry, VenueID, []ID) {
	t.Helper()
	r := New()
	venue := r.AddVenue("BINANCE")
	usdt := r.AddAsset("USDT")
	_ = usdt

	ids := make([]ID, 0, 2)
	ids = append(ids, r.AddInstrument(Instrument{
		Symbol:       "BTCUSDT-PERP",
		VenueID:      venue,
		Kind:         KindPerpetual,
		BaseAssetID:  r.AddAsset("BTC"),
		QuoteAssetID: r.AddAsset("USDT"),
	}))
	ids = append(ids, r.AddInstrument(Instrument{
		Symbol:       "ETHUSDT-PERP",
		VenueID:      venue,
		Kind:         KindPerpetual,
		BaseAssetID:  r.AddAsset("ETH"),
		QuoteAssetID: r.AddAsset("USDT"),
	}))
	return r, venue, ids
}

func TestRegistry_ResolveBySelector(t *testing.T) {
	r, _, ids := seedRegistry(t)

	got := r.Resolve(Selector{QuoteAsset: "USDT", InstrumentType: KindPerpetual})
	if len(got) != 2 {
		t.Fatalf("expected 2 instruments, got %d", len(got))
	}
	if got[0] != ids[0] || got[1] != ids[1] {
		t.Fatalf("resolve order should match insertion order, got %v", got)
	}
}

func TestRegistry_UnknownInstrument(t *testing.T) {
	r, _, _ := seedRegistry(t)
	if _, err := r.Get(ID{}); err == nil {
		t.Fatalf("expected unknown instrument error")
	}
}

func TestRegistry_MaterializeSynthetics_StableAcrossCalls(t *testing.T) {
	r, _, _ := seedRegistry(t)

	sel := Selector{QuoteAsset: "USDT", InstrumentType: KindPerpetual}
	group := GroupBy{QuoteAsset: true}

	first := r.MaterializeSynthetics(sel, group)
	second := r.MaterializeSynthetics(sel, group)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected exactly one synthetic group, got %d and %d", len(first), len(second))
	}
	if first[0] != second[0] {
		t.Fatalf("synthetic id must be stable across materialization calls: %v != %v", first[0], second[0])
	}

	members, err := r.Members(first[0])
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	synth, err := r.Get(first[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !synth.Synthetic {
		t.Fatalf("expected synthetic flag set")
	}
	if got := r.venueName(synth.VenueID); got != IndexVenueName {
		t.Fatalf("expected Index venue for non-venue-grouped synthetic, got %q", got)
	}
}

func TestRegistry_MaterializeSynthetics_PerVenueWhenGrouped(t *testing.T) {
	r, venue, _ := seedRegistry(t)

	sel := Selector{QuoteAsset: "USDT"}
	group := GroupBy{QuoteAsset: true, Venue: true}

	ids := r.MaterializeSynthetics(sel, group)
	if len(ids) != 1 {
		t.Fatalf("expected 1 group, got %d", len(ids))
	}
	synth, err := r.Get(ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if synth.VenueID != venue {
		t.Fatalf("expected venue-preserving synthetic to keep concrete venue")
	}
}
