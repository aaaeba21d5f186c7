package dkr

import (
	"time"

	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different site root, mainly for
// tests against a local server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithCacheDir sets where fetched pages are stored between runs.
func WithCacheDir(dir string) Option {
	return func(c *Client) {
		c.cacheDir = dir
	}
}

// WithCacheTTL bounds how long a cached page stays fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithRequestDelay spaces consecutive requests to the site.
func WithRequestDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = d
	}
}

// WithLogger sets the logger used by the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}
