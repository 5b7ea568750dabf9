package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"insights-pipeline/internal/insights/ierrors"
)

// Load reads a YAML pipeline definition and validates it, grounded on
// internal/ops/config.go's Load/validate-then-resolve split but reworked
// around github.com/spf13/viper's YAML unmarshaling instead of
// encoding/json.
func Load(path string) (PipelineConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return PipelineConfig{}, fmt.Errorf("read config: %w", err)
	}

	var cfg PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return PipelineConfig{}, ierrors.NewConfigInvalid(fmt.Sprintf("unmarshal: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		return PipelineConfig{}, err
	}
	return cfg, nil
}

// Watch reloads the pipeline definition whenever the underlying file
// changes on disk and invokes onReload with the newly validated config.
// Replaces the teacher's os.Stat-polling watchConfig (cmd/trader/main.go)
// with viper.WatchConfig's fsnotify-backed watch; malformed reloads are
// passed to the onError callback rather than crashing the running
// pipeline.
func Watch(path string, onReload func(PipelineConfig), onError func(error)) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg PipelineConfig
		if err := v.Unmarshal(&cfg); err != nil {
			onError(ierrors.NewConfigInvalid(fmt.Sprintf("unmarshal: %v", err)))
			return
		}
		if err := cfg.Validate(); err != nil {
			onError(err)
			return
		}
		onReload(cfg)
	})
	v.WatchConfig()
	return nil
}
