package timecode

import "errors"

// Sentinel kinds for time text errors.
var (
	ErrFormat = errors.New("invalid time format")
)
