package config

import (
	"insights-pipeline/internal/insights/instrument"
)

// PipelineConfig is the top-level pipeline definition loaded from YAML
// (spec §3/§6).
type PipelineConfig struct {
	Name              string `yaml:"name" mapstructure:"name"`
	Version           string `yaml:"version" mapstructure:"version"`
	ReferenceCurrency string `yaml:"reference_currency" mapstructure:"reference_currency"`

	WarmupSteps        int   `yaml:"warmup_steps" mapstructure:"warmup_steps"`
	StateTTLSeconds    int64 `yaml:"state_ttl_seconds" mapstructure:"state_ttl_seconds"`
	MinIntervalSeconds int64 `yaml:"min_interval_seconds" mapstructure:"min_interval_seconds"`
	Parallel           bool  `yaml:"parallel" mapstructure:"parallel"`

	GlobalInstrumentSelector instrument.Selector `yaml:"global_instrument_selector" mapstructure:"global_instrument_selector"`

	Features []FeatureConfig `yaml:"features" mapstructure:"features"`
}
