// Package dkr talks to the leaderboard site: throttled, session-aware
// fetching with an on-disk page cache, plus typed accessors that parse the
// three page kinds the optimizer consumes.
package dkr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/dkr/parse"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/metrics"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Client fetches site pages. Safe for concurrent use; the throttle
// serializes outbound requests regardless of caller concurrency.
type Client struct {
	httpc    *http.Client
	baseURL  string
	cacheDir string
	cacheTTL time.Duration
	delay    time.Duration
	log      logger.Logger

	sessionOnce sync.Once
	sessionErr  error

	mu          sync.Mutex
	lastRequest time.Time
}

// New creates a Client with the given options applied over the defaults.
func New(opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpc:    &http.Client{Timeout: 30 * time.Second, Jar: jar},
		baseURL:  "https://www.dkr64.com",
		cacheDir: "cache",
		cacheTTL: 24 * time.Hour,
		delay:    500 * time.Millisecond,
		log:      logger.Named("dkr"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ensureSession makes a throwaway request to the site root so the session
// cookie lands in the jar. Pages served without it come back empty.
func (c *Client) ensureSession(ctx context.Context) error {
	c.sessionOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
		if err != nil {
			c.sessionErr = err
			return
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpc.Do(req)
		if err != nil {
			c.sessionErr = fmt.Errorf("%w: establishing session: %v", ErrFetch, err)
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	})
	return c.sessionErr
}

// throttle blocks until the configured delay since the previous request
// has elapsed, or the context is done.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	wait := c.delay - time.Since(c.lastRequest)
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetch returns a page body, serving from the cache when fresh. Missing
// pages (404/500) return ErrNotFound and are cached negatively.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if c.cacheValid(url) {
		body, err := c.readCache(url)
		if err == nil || errors.Is(err, ErrNotFound) {
			metrics.RecordCacheHit()
			return body, err
		}
		// Meta present but body unreadable; fall through to refetch.
	}
	metrics.RecordCacheMiss()

	if err := c.ensureSession(ctx); err != nil {
		return "", err
	}
	if err := c.throttle(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.RecordFetchError()
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusInternalServerError {
		metrics.RecordFetchNotFound()
		c.log.Debug(ctx, "page not found", logger.String("url", url), logger.Int("status", resp.StatusCode))
		if err := c.writeCache(url, notFoundMarker); err != nil {
			c.log.Warn(ctx, "cache write failed", logger.Error(err))
		}
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordFetchError()
		return "", fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFetchError()
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	if len(raw) == 0 {
		metrics.RecordFetchError()
		return "", fmt.Errorf("%w: %s: session cookie may have expired", ErrEmptyBody, url)
	}

	if err := c.writeCache(url, string(raw)); err != nil {
		c.log.Warn(ctx, "cache write failed", logger.Error(err))
	}
	return string(raw), nil
}

// PlayerPage fetches and parses a player profile.
func (c *Client) PlayerPage(ctx context.Context, username string) (*parse.PlayerPage, error) {
	body, err := c.Fetch(ctx, c.PlayerURL(username))
	if err != nil {
		return nil, err
	}
	metrics.RecordPageFetch("player")

	page, err := parse.Player(body)
	if err != nil {
		metrics.RecordParseError("player")
		return nil, err
	}
	return page, nil
}

// CombinedRanking fetches and parses the site-wide average-finish ranking.
func (c *Client) CombinedRanking(ctx context.Context) ([]model.RankingEntry, error) {
	body, err := c.Fetch(ctx, c.CombinedRankingURL())
	if err != nil {
		return nil, err
	}
	metrics.RecordPageFetch("ranking")

	entries, err := parse.CombinedRanking(body)
	if err != nil {
		metrics.RecordParseError("ranking")
		return nil, err
	}
	return entries, nil
}

// Leaderboard fetches and parses one variant's board. ErrNotFound means
// the variant has no board at all and must be excluded from scope.
func (c *Client) Leaderboard(ctx context.Context, v model.TrackVariant) ([]model.LeaderboardEntry, error) {
	body, err := c.Fetch(ctx, c.LeaderboardURL(v))
	if err != nil {
		return nil, err
	}
	metrics.RecordPageFetch("leaderboard")

	entries, err := parse.Leaderboard(body)
	if err != nil {
		metrics.RecordParseError("leaderboard")
		return nil, fmt.Errorf("%s: %w", v.Key(), err)
	}
	return entries, nil
}
