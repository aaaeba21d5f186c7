// Package timecode converts between the site's lap-time text and the
// integer centisecond unit used throughout all computation. Working in
// centiseconds keeps comparisons and subtractions exact.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	centisPerSecond = 100
	centisPerMinute = 6000
)

// Parse converts a "MM:SS:CC" (or canonical "MM:SS.CC") time string to
// centiseconds. Exactly three integer fields are required; fields carry no
// further bounds validation.
func Parse(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ':' || r == '.'
	})
	if len(fields) != 3 {
		return 0, fmt.Errorf("%w: %q, expected MM:SS:CC", ErrFormat, s)
	}

	parts := make([]int, 3)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return 0, fmt.Errorf("%w: %q, non-numeric field %q", ErrFormat, s, f)
		}
		parts[i] = n
	}

	return parts[0]*centisPerMinute + parts[1]*centisPerSecond + parts[2], nil
}

// Format renders centiseconds as "MM:SS.CC" with two-digit zero-padded
// fields. It is the exact inverse of Parse for all non-negative inputs.
func Format(cs int) string {
	minutes := cs / centisPerMinute
	remainder := cs % centisPerMinute
	seconds := remainder / centisPerSecond
	centis := remainder % centisPerSecond
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}
