package repository

import (
	"time"
)

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithTTL bounds how long a snapshot is served. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}
