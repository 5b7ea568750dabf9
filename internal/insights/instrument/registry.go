package instrument

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"insights-pipeline/internal/insights/ierrors"
)

// Registry holds the immutable universe of concrete instruments plus the
// synthetic aggregates materialized from them. Grounded on
// internal/schema/registry.go's sequential-id registry shape, generalized to
// full instrument metadata and materialization (spec §4.1).
type Registry struct {
	mu sync.RWMutex

	venues      map[VenueID]Venue
	venueByName map[string]VenueID

	assets      map[AssetID]Asset
	assetByName map[string]AssetID

	instruments   map[ID]*Instrument
	insertOrder   []ID
	syntheticByKey map[groupKey]ID
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		venues:         make(map[VenueID]Venue),
		venueByName:    make(map[string]VenueID),
		assets:         make(map[AssetID]Asset),
		assetByName:    make(map[string]AssetID),
		instruments:    make(map[ID]*Instrument),
		syntheticByKey: make(map[groupKey]ID),
	}
}

// AddVenue registers a venue by name, returning its stable id. Calling
// AddVenue again with the same name returns the existing id.
func (r *Registry) AddVenue(name string) VenueID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.venueByName[name]; ok {
		return id
	}
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("venue:"+name))
	r.venues[id] = Venue{ID: id, Name: name}
	r.venueByName[name] = id
	return id
}

// AddAsset registers an asset by name, returning its stable id.
func (r *Registry) AddAsset(name string) AssetID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.assetByName[name]; ok {
		return id
	}
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("asset:"+name))
	r.assets[id] = Asset{ID: id, Name: name}
	r.assetByName[name] = id
	return id
}

// AddInstrument registers a concrete instrument. If inst.ID is the zero
// value, a stable id is derived from the instrument's symbol and venue.
func (r *Registry) AddInstrument(inst Instrument) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst.ID == (ID{}) {
		inst.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("instrument:"+inst.Symbol+":"+inst.VenueID.String()))
	}
	cp := inst
	r.instruments[cp.ID] = &cp
	r.insertOrder = append(r.insertOrder, cp.ID)
	return cp.ID
}

// Get returns the instrument for id.
func (r *Registry) Get(id ID) (Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instruments[id]
	if !ok {
		return Instrument{}, ierrors.NewUnknownInstrument(id)
	}
	return *inst, nil
}

// Members returns the constituent concrete instrument ids for a synthetic
// instrument. Returns UnknownInstrument if id is not registered, and an
// empty slice if id is registered but concrete (no members).
func (r *Registry) Members(id ID) ([]ID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instruments[id]
	if !ok {
		return nil, ierrors.NewUnknownInstrument(id)
	}
	out := make([]ID, len(inst.Members))
	copy(out, inst.Members)
	return out, nil
}

// Resolve returns the ids of all instruments (concrete and synthetic)
// matching the selector, in a deterministic, stable order (insertion order).
func (r *Registry) Resolve(sel Selector) []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ID, 0, len(r.insertOrder))
	for _, id := range r.insertOrder {
		inst := r.instruments[id]
		if sel.matches(inst, r) {
			out = append(out, id)
		}
	}
	return out
}

func (r *Registry) venueName(id VenueID) string {
	if v, ok := r.venues[id]; ok {
		return v.Name
	}
	return ""
}

func (r *Registry) assetName(id AssetID) string {
	if a, ok := r.assets[id]; ok {
		return a.Name
	}
	return ""
}

// sortedIDs returns ids sorted by string form, used only where a
// within-group deterministic member order matters beyond insertion order
// (e.g. hashing group membership for the synthetic id).
func sortedIDs(ids []ID) []ID {
	out := append([]ID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
