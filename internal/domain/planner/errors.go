package planner

import "errors"

// ErrInternal reports a planner invariant violation: the feasibility
// pre-check promised a solution the table could not produce. It indicates
// a bug, not bad input, and callers treat it as fatal.
var ErrInternal = errors.New("planner internal error")
