package dkr

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// notFoundMarker is stored as the cached body of a page the site 404ed,
// so repeated runs skip missing boards without a network round trip.
const notFoundMarker = "__DKR_NOT_FOUND__"

type cacheMeta struct {
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *Client) cachePath(url string) string {
	return filepath.Join(c.cacheDir, cacheKey(url)+".html")
}

func (c *Client) metaPath(url string) string {
	return filepath.Join(c.cacheDir, cacheKey(url)+".meta")
}

func (c *Client) cacheValid(url string) bool {
	raw, err := os.ReadFile(c.metaPath(url))
	if err != nil {
		return false
	}
	var meta cacheMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return false
	}
	return time.Since(meta.FetchedAt) < c.cacheTTL
}

// readCache returns the cached body, or ErrNotFound for a negatively
// cached page.
func (c *Client) readCache(url string) (string, error) {
	raw, err := os.ReadFile(c.cachePath(url))
	if err != nil {
		return "", err
	}
	if string(raw) == notFoundMarker {
		return "", ErrNotFound
	}
	return string(raw), nil
}

func (c *Client) writeCache(url, body string) error {
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(c.cachePath(url), []byte(body), 0o644); err != nil {
		return err
	}
	meta, err := json.Marshal(cacheMeta{URL: url, FetchedAt: time.Now()})
	if err != nil {
		return err
	}
	return os.WriteFile(c.metaPath(url), meta, 0o644)
}

// ClearCache removes every cached page and its metadata.
func (c *Client) ClearCache() error {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.cacheDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
