package instrument

// Selector filters the instrument universe. A nil/empty field means "match
// any value" for that dimension.
type Selector struct {
	BaseAsset      string `yaml:"base_asset,omitempty" mapstructure:"base_asset,omitempty"`
	QuoteAsset     string `yaml:"quote_asset,omitempty" mapstructure:"quote_asset,omitempty"`
	Venue          string `yaml:"venue,omitempty" mapstructure:"venue,omitempty"`
	InstrumentType Kind   `yaml:"instrument_type,omitempty" mapstructure:"instrument_type,omitempty"`
	// Synthetic, when non-nil, restricts the match to synthetic (true) or
	// concrete (false) instruments only.
	Synthetic *bool `yaml:"synthetic,omitempty" mapstructure:"synthetic,omitempty"`
}

// Empty reports whether the selector matches everything.
func (s Selector) Empty() bool {
	return s.BaseAsset == "" && s.QuoteAsset == "" && s.Venue == "" &&
		s.InstrumentType == KindUnknown && s.Synthetic == nil
}

func (s Selector) matches(inst *Instrument, r *Registry) bool {
	if s.BaseAsset != "" && r.assetName(inst.BaseAssetID) != s.BaseAsset {
		return false
	}
	if s.QuoteAsset != "" && r.assetName(inst.QuoteAssetID) != s.QuoteAsset {
		return false
	}
	if s.Venue != "" && r.venueName(inst.VenueID) != s.Venue {
		return false
	}
	if s.InstrumentType != KindUnknown && inst.Kind != s.InstrumentType {
		return false
	}
	if s.Synthetic != nil && inst.Synthetic != *s.Synthetic {
		return false
	}
	return true
}

// GroupBy is the mask of attributes a synthetic aggregate groups concrete
// instruments by. A dimension set to false is collapsed away (all matching
// instruments fall into one group along that axis); a dimension set to true
// is preserved (distinct values produce distinct groups).
type GroupBy struct {
	BaseAsset      bool `yaml:"base_asset,omitempty" mapstructure:"base_asset,omitempty"`
	QuoteAsset     bool `yaml:"quote_asset,omitempty" mapstructure:"quote_asset,omitempty"`
	InstrumentType bool `yaml:"instrument_type,omitempty" mapstructure:"instrument_type,omitempty"`
	Venue          bool `yaml:"venue,omitempty" mapstructure:"venue,omitempty"`
}

// Zero reports whether no dimension is preserved, i.e. the whole selector
// match collapses into a single group.
func (g GroupBy) Zero() bool {
	return !g.BaseAsset && !g.QuoteAsset && !g.InstrumentType && !g.Venue
}

// groupKey is the tuple of preserved attribute values for one instrument
// under a GroupBy mask, used to bucket instruments into synthetic groups.
type groupKey struct {
	baseAsset string
	quoteAsset string
	kind       Kind
	venue      string
}

func (r *Registry) groupKeyFor(inst *Instrument, g GroupBy) groupKey {
	var key groupKey
	if g.BaseAsset {
		key.baseAsset = r.assetName(inst.BaseAssetID)
	}
	if g.QuoteAsset {
		key.quoteAsset = r.assetName(inst.QuoteAssetID)
	}
	if g.InstrumentType {
		key.kind = inst.Kind
	}
	if g.Venue {
		key.venue = r.venueName(inst.VenueID)
	}
	return key
}
