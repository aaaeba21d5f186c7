package app

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNoUsername means no player was named and none is configured.
	ErrNoUsername = errors.New("no username given")

	// ErrRivalNotFound means an explicitly named rival is absent from the
	// combined ranking.
	ErrRivalNotFound = errors.New("rival not found in combined ranking")

	// ErrNoData means not a single leaderboard could be fetched, leaving
	// nothing to analyze.
	ErrNoData = errors.New("no leaderboards in scope")
)
