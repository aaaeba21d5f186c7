// Package fetch fans leaderboard retrieval out over a bounded worker pool.
// The site's rate limit is enforced by the client underneath, so the pool's
// job is overlap (cache reads, parsing) rather than raw parallel I/O.
package fetch

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/dkr"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/metrics"
)

// Source retrieves one variant's board.
type Source interface {
	Leaderboard(ctx context.Context, v model.TrackVariant) ([]model.LeaderboardEntry, error)
}

// Pool fetches many boards concurrently.
type Pool struct {
	src     Source
	workers int
	log     logger.Logger
}

// New creates a Pool reading from src.
func New(src Source, opts ...Option) *Pool {
	p := &Pool{
		src:     src,
		workers: 4,
		log:     logger.Named("fetch"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = 1
	}
	return p
}

// FetchAll retrieves every variant's board, keyed by variant identity.
// Variants without a board are counted as skipped, not errored; any other
// failure cancels the remaining work and is returned.
func (p *Pool) FetchAll(ctx context.Context, variants []model.TrackVariant) (map[string][]model.LeaderboardEntry, int, error) {
	metrics.UpdateFetchWorkers(p.workers)

	boards := make(map[string][]model.LeaderboardEntry, len(variants))
	skipped := 0
	var mu sync.Mutex

	jobs := make(chan model.TrackVariant)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, v := range variants {
			select {
			case jobs <- v:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			for v := range jobs {
				entries, err := p.src.Leaderboard(ctx, v)
				if err != nil {
					if errors.Is(err, dkr.ErrNotFound) {
						p.log.Debug(ctx, "no board for variant", logger.String("variant", v.Key()))
						mu.Lock()
						skipped++
						mu.Unlock()
						continue
					}
					return err
				}
				mu.Lock()
				boards[v.Key()] = entries
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	metrics.UpdateLeaderboardsInScope(len(boards))
	return boards, skipped, nil
}
