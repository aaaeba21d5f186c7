package repository

import (
	"errors"
)

// ErrNotFound reports a snapshot missing from the store, either never
// computed or expired.
var ErrNotFound = errors.New("snapshot not found")
