package fetch

import (
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
)

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the pool size. Values below one are raised to one.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		p.workers = n
	}
}

// WithLogger sets the logger used by the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		p.log = l
	}
}
