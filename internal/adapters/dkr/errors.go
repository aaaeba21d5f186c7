package dkr

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNotFound marks a page the site serves a 404/500 for, typically a
	// leaderboard that does not exist (e.g. cars on a hovercraft-only
	// track). Cached negatively so the variant is skipped without
	// re-requesting.
	ErrNotFound = errors.New("page not found")

	// ErrFetch wraps transport failures and unexpected statuses.
	ErrFetch = errors.New("fetch failed")

	// ErrEmptyBody marks a 200 with no content, which the site produces
	// when the session cookie has expired.
	ErrEmptyBody = errors.New("empty response body")
)
