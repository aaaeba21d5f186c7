// Package app orchestrates one analysis run: fetch the player's page and
// the combined ranking, pull every leaderboard in scope, apply configured
// time overrides, and hand the assembled inputs to the analysis and
// planning domain packages. Results are cached as snapshots.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/dkr/parse"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/fetch"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/repository"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/analysis"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/planner"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/snapshot"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/metrics"
)

// Source is everything the service needs from the site adapter.
type Source interface {
	PlayerPage(ctx context.Context, username string) (*parse.PlayerPage, error)
	CombinedRanking(ctx context.Context) ([]model.RankingEntry, error)
	Leaderboard(ctx context.Context, v model.TrackVariant) ([]model.LeaderboardEntry, error)
}

// Service runs analyses and serves cached snapshots.
type Service struct {
	src   Source
	store repository.Store
	log   logger.Logger

	fetchWorkers    int
	snapshotTTL     time.Duration
	defaultUsername string
	defaultRival    string
	overrides       []TimeOverride
	exclude         []planner.Exclusion

	group   singleflight.Group
	started time.Time
}

// New creates a Service reading from src.
func New(src Source, opts ...Option) *Service {
	s := &Service{
		src:          src,
		fetchWorkers: 4,
		snapshotTTL:  15 * time.Minute,
		log:          logger.Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemory(repository.WithTTL(s.snapshotTTL))
	}
	return s
}

// Start marks the service running. Kept for lifecycle symmetry with Stop.
func (s *Service) Start(ctx context.Context) error {
	s.started = time.Now()
	s.log.Info(ctx, "service started",
		logger.Int("fetch_workers", s.fetchWorkers),
		logger.Int("time_overrides", len(s.overrides)),
		logger.Int("plan_exclusions", len(s.exclude)))
	return nil
}

// Stop logs shutdown. In-flight analyses finish via their own contexts.
func (s *Service) Stop(ctx context.Context) error {
	s.log.Info(ctx, "service stopped")
	return nil
}

// Analyze produces a snapshot for username, reusing a fresh cached one
// when available. Concurrent requests for the same player and rival share
// a single computation. Empty arguments fall back to the configured
// defaults.
func (s *Service) Analyze(ctx context.Context, username, rival string) (*snapshot.Snapshot, error) {
	if username == "" {
		username = s.defaultUsername
	}
	if username == "" {
		return nil, ErrNoUsername
	}
	if rival == "" {
		rival = s.defaultRival
	}

	key := strings.ToLower(username) + "|" + strings.ToLower(rival)
	if snap, err := s.store.Get(ctx, key); err == nil {
		return snap, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		snap, err := s.compute(ctx, username, rival)
		if err != nil {
			return nil, err
		}
		if err := s.store.Put(ctx, key, snap); err != nil {
			s.log.Warn(ctx, "snapshot store failed", logger.Error(err))
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot.Snapshot), nil
}

func (s *Service) compute(ctx context.Context, username, rival string) (*snapshot.Snapshot, error) {
	start := time.Now()

	var page *parse.PlayerPage
	var ranking []model.RankingEntry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.src.PlayerPage(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		ranking, err = s.src.CombinedRanking(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	currentAF, currentRank := page.Profile.CurrentAF, page.Profile.CombinedRank
	if entry := rankingEntry(ranking, username); entry != nil {
		currentAF, currentRank = entry.AF, entry.Rank
	} else {
		s.log.Warn(ctx, "player missing from combined ranking, using profile data",
			logger.String("username", username))
	}

	variants := make([]model.TrackVariant, len(page.Standings))
	for i, st := range page.Standings {
		variants[i] = st.Variant
	}

	pool := fetch.New(s.src, fetch.WithWorkers(s.fetchWorkers), fetch.WithLogger(s.log.Named("fetch")))
	boards, skipped, err := pool.FetchAll(ctx, variants)
	if err != nil {
		return nil, err
	}

	totalTracks := len(boards)
	if totalTracks == 0 {
		return nil, ErrNoData
	}
	s.log.Info(ctx, "leaderboards fetched",
		logger.Int("in_scope", totalTracks),
		logger.Int("skipped", skipped))

	standings := page.Standings
	if len(s.overrides) > 0 {
		rankDelta, affected := s.applyOverrides(ctx, username, standings, boards)
		if affected > 0 {
			delta := float64(rankDelta) / float64(totalTracks)
			s.log.Info(ctx, "time overrides applied",
				logger.Int("affected", affected),
				logger.Float64("af_delta", delta))
			currentAF += delta
		}
	}

	opportunities := analysis.BuildAll(standings, boards, totalTracks, username)
	metrics.RecordAnalysis()
	metrics.RecordAnalysisDuration(float64(time.Since(start).Milliseconds()))

	snap := &snapshot.Snapshot{
		Profile:       page.Profile,
		CurrentAF:     currentAF,
		CurrentRank:   currentRank,
		TotalTracks:   totalTracks,
		SkippedBoards: skipped,
		GeneratedAt:   time.Now(),
		Opportunities: opportunities,
	}

	target, err := s.resolveRival(ranking, rival, currentRank)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return snap, nil
	}

	in := planner.BuildInputs(standings, boards, totalTracks, username, s.exclude)

	minTime, err := s.planMinTime(ctx, in, currentAF, target)
	if err != nil {
		return nil, err
	}
	snap.PlanMinTime = minTime
	snap.PlanMinTracks = s.planMinTracks(ctx, in, currentAF, target)

	return snap, nil
}

// resolveRival picks the overtake target: an explicitly named player, or
// whoever sits directly above in the combined ranking. Nil with no error
// means there is nobody to overtake.
func (s *Service) resolveRival(ranking []model.RankingEntry, rival string, currentRank int) (*model.RankingEntry, error) {
	if rival != "" {
		entry := rankingEntry(ranking, rival)
		if entry == nil {
			return nil, fmt.Errorf("%w: %s", ErrRivalNotFound, rival)
		}
		return entry, nil
	}
	if currentRank <= 1 {
		return nil, nil
	}
	for i := range ranking {
		if ranking[i].Rank == currentRank-1 {
			return &ranking[i], nil
		}
	}
	return nil, nil
}

func (s *Service) planMinTime(ctx context.Context, in planner.Inputs, currentAF float64, target *model.RankingEntry) (*planner.Plan, error) {
	start := time.Now()
	plan, err := planner.MinTime(in, currentAF, target.AF, target.Username)
	if err != nil {
		// ErrInternal from the solver: a planning bug, not bad input.
		metrics.RecordErrorByComponent("planner", "internal")
		return nil, err
	}
	metrics.RecordPlanDuration("min_time", float64(time.Since(start).Milliseconds()))
	if !plan.Feasible {
		metrics.RecordPlanInfeasible("min_time")
	}
	s.logPlan(ctx, "min_time", &plan)
	return &plan, nil
}

func (s *Service) planMinTracks(ctx context.Context, in planner.Inputs, currentAF float64, target *model.RankingEntry) *planner.Plan {
	start := time.Now()
	plan := planner.MinTracks(in, currentAF, target.AF, target.Username)
	metrics.RecordPlanDuration("min_tracks", float64(time.Since(start).Milliseconds()))
	if !plan.Feasible {
		metrics.RecordPlanInfeasible("min_tracks")
	}
	s.logPlan(ctx, "min_tracks", &plan)
	return &plan
}

func (s *Service) logPlan(ctx context.Context, mode string, plan *planner.Plan) {
	s.log.Info(ctx, "overtake plan computed",
		logger.String("mode", mode),
		logger.String("rival", plan.RivalUsername),
		logger.Int("items", len(plan.Items)),
		logger.Int("positions_needed", plan.TotalPositionsNeeded),
		logger.Int("positions_gained", plan.TotalPositionsGained),
		logger.Int("investment_cs", plan.TotalTimeInvestmentCS),
		logger.Any("feasible", plan.Feasible))
}

// GetStats returns a point-in-time view of service state.
func (s *Service) GetStats() map[string]any {
	return map[string]any{
		"snapshots":       s.store.Count(context.Background()),
		"fetch_workers":   s.fetchWorkers,
		"time_overrides":  len(s.overrides),
		"plan_exclusions": len(s.exclude),
		"uptime_seconds":  int(time.Since(s.started).Seconds()),
	}
}

func rankingEntry(ranking []model.RankingEntry, username string) *model.RankingEntry {
	for i := range ranking {
		if strings.EqualFold(ranking[i].Username, username) {
			return &ranking[i]
		}
	}
	return nil
}
