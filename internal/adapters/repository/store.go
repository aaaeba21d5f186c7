// Package repository stores computed analysis snapshots so repeated
// requests within the freshness window skip the full fetch-and-plan cycle.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/snapshot"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/metrics"
)

// Store is the snapshot cache boundary.
type Store interface {
	Put(ctx context.Context, key string, snap *snapshot.Snapshot) error
	Get(ctx context.Context, key string) (*snapshot.Snapshot, error)
	Count(ctx context.Context) int
}

type entry struct {
	snap    *snapshot.Snapshot
	addedAt time.Time
}

// MemoryStore keeps snapshots in process memory with lazy TTL expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a MemoryStore.
func NewMemory(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		ttl:     15 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores a snapshot under key, replacing any previous one.
func (s *MemoryStore) Put(_ context.Context, key string, snap *snapshot.Snapshot) error {
	s.mu.Lock()
	s.entries[key] = entry{snap: snap, addedAt: s.now()}
	count := len(s.entries)
	s.mu.Unlock()

	metrics.UpdateSnapshotCount(count)
	return nil
}

// Get returns the stored snapshot, or ErrNotFound when absent or stale.
// Stale entries are dropped on access.
func (s *MemoryStore) Get(_ context.Context, key string) (*snapshot.Snapshot, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if s.ttl > 0 && s.now().Sub(e.addedAt) >= s.ttl {
		s.mu.Lock()
		// Recheck under the write lock; a fresher entry may have landed.
		if cur, ok := s.entries[key]; ok && cur.addedAt.Equal(e.addedAt) {
			delete(s.entries, key)
		}
		count := len(s.entries)
		s.mu.Unlock()

		metrics.UpdateSnapshotCount(count)
		return nil, ErrNotFound
	}

	return e.snap, nil
}

// Count reports how many snapshots are held, stale ones included.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
