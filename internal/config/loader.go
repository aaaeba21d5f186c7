package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if DKR_CONFIG is set
//  3. env (prefix DKR_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("DKR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: DKR_USERNAME, DKR_CACHE_DIR, ...
	// Map env keys like DKR_CACHE_DIR -> cache_dir (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("DKR_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "dkr_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.BaseURL == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case cfg.CacheTTLHours < 0:
		return fmt.Errorf("%w: cache_ttl_hours must not be negative", ErrInvalidConfig)
	case cfg.RequestDelayMS < 0:
		return fmt.Errorf("%w: request_delay_ms must not be negative", ErrInvalidConfig)
	case cfg.FetchWorkers < 1:
		return fmt.Errorf("%w: fetch_workers must be at least 1", ErrInvalidConfig)
	case cfg.SnapshotTTLMinutes < 0:
		return fmt.Errorf("%w: snapshot_ttl_minutes must not be negative", ErrInvalidConfig)
	}
	for _, o := range cfg.TimeOverrides {
		if o.Track == "" || o.Time == "" {
			return fmt.Errorf("%w: time_overrides entries need track and time", ErrInvalidConfig)
		}
	}
	for _, x := range cfg.ExcludeFromPlans {
		if x.Track == "" {
			return fmt.Errorf("%w: exclude_from_plans entries need track", ErrInvalidConfig)
		}
	}
	return nil
}
