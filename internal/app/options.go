package app

import (
	"time"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/repository"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/planner"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
)

// TimeOverride substitutes a hypothetical time on one variant before
// analysis runs, for times not yet submitted to the site.
type TimeOverride struct {
	Variant model.TrackVariant
	TimeCS  int
}

// Option configures a Service.
type Option func(*Service)

// WithStore sets the snapshot store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithSnapshotTTL sets the in-memory store's freshness window. Ignored
// when WithStore provides a store.
func WithSnapshotTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.snapshotTTL = ttl
	}
}

// WithFetchWorkers sets the leaderboard fetch pool size.
func WithFetchWorkers(n int) Option {
	return func(s *Service) {
		s.fetchWorkers = n
	}
}

// WithDefaultUsername sets the player analyzed when a request names none.
func WithDefaultUsername(username string) Option {
	return func(s *Service) {
		s.defaultUsername = username
	}
}

// WithDefaultRival sets the overtake target used when a request names
// none. Empty keeps the automatic pick: the player directly above in the
// combined ranking.
func WithDefaultRival(rival string) Option {
	return func(s *Service) {
		s.defaultRival = rival
	}
}

// WithTimeOverrides applies hypothetical times before every analysis.
func WithTimeOverrides(overrides []TimeOverride) Option {
	return func(s *Service) {
		s.overrides = overrides
	}
}

// WithExclusions removes variants from overtake planning.
func WithExclusions(exclude []planner.Exclusion) Option {
	return func(s *Service) {
		s.exclude = exclude
	}
}

// WithLogger sets the logger used by the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}
