// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's sentinel errors.
package config

import "context"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Username is the player whose ranking is analyzed by default.
	Username string `koanf:"username"`

	// Rival optionally names the overtake target. Empty selects the
	// player directly above in the combined ranking.
	Rival string `koanf:"rival"`

	// BaseURL is the root of the leaderboard site.
	BaseURL string `koanf:"base_url"`

	// CacheDir holds fetched pages between runs.
	CacheDir string `koanf:"cache_dir"`

	// CacheTTLHours bounds how long a cached page stays fresh.
	CacheTTLHours float64 `koanf:"cache_ttl_hours"`

	// RequestDelayMS spaces consecutive requests to the remote site.
	RequestDelayMS int `koanf:"request_delay_ms"`

	// FetchWorkers sets the leaderboard fetch pool size.
	FetchWorkers int `koanf:"fetch_workers"`

	// OutputDir receives the generated reports.
	OutputDir string `koanf:"output_dir"`

	// SnapshotTTLMinutes bounds how long a computed analysis is served
	// from the in-memory store before being recomputed.
	SnapshotTTLMinutes int `koanf:"snapshot_ttl_minutes"`

	// TimeOverrides substitute hypothetical times before analysis,
	// answering "what would my ranking be if I ran X on track Y".
	TimeOverrides []TimeOverride `koanf:"time_overrides"`

	// ExcludeFromPlans removes tracks (or one vehicle's boards on a
	// track) from overtake planning. Analysis still reports them.
	ExcludeFromPlans []PlanExclusion `koanf:"exclude_from_plans"`
}

// TimeOverride names one variant and the hypothetical time to assume
// there, in the site's MM:SS:CC text form.
type TimeOverride struct {
	Track    string `koanf:"track"`
	Vehicle  string `koanf:"vehicle"`
	Category string `koanf:"category"`
	Laps     string `koanf:"laps"`
	Time     string `koanf:"time"`
}

// PlanExclusion matches a track by slug, optionally narrowed to one
// vehicle. An empty vehicle excludes every variant of the track.
type PlanExclusion struct {
	Track   string `koanf:"track"`
	Vehicle string `koanf:"vehicle"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8080",
		BaseURL:            "https://www.dkr64.com",
		CacheDir:           "cache",
		CacheTTLHours:      24,
		RequestDelayMS:     500,
		FetchWorkers:       4,
		OutputDir:          "output",
		SnapshotTTLMinutes: 15,
	}
}
