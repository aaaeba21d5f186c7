package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/repository"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/snapshot"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Put then Get round-trips a snapshot", t, func() {
		s := repository.NewMemory()
		snap := &snapshot.Snapshot{CurrentAF: 5.43, TotalTracks: 40}

		So(s.Put(ctx, "hero|", snap), ShouldBeNil)

		got, err := s.Get(ctx, "hero|")
		So(err, ShouldBeNil)
		So(got, ShouldEqual, snap)
		So(s.Count(ctx), ShouldEqual, 1)
	})

	Convey("A missing key reports ErrNotFound", t, func() {
		s := repository.NewMemory()

		_, err := s.Get(ctx, "nobody|")
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})

	Convey("Entries expire after the TTL and are dropped on access", t, func() {
		now := time.Now()
		clock := func() time.Time { return now }
		s := repository.NewMemory(repository.WithTTL(time.Minute), repository.WithClock(clock))

		So(s.Put(ctx, "hero|", &snapshot.Snapshot{}), ShouldBeNil)

		_, err := s.Get(ctx, "hero|")
		So(err, ShouldBeNil)

		now = now.Add(2 * time.Minute)
		_, err = s.Get(ctx, "hero|")
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		So(s.Count(ctx), ShouldEqual, 0)
	})

	Convey("A zero TTL disables expiry", t, func() {
		now := time.Now()
		clock := func() time.Time { return now }
		s := repository.NewMemory(repository.WithTTL(0), repository.WithClock(clock))

		So(s.Put(ctx, "hero|", &snapshot.Snapshot{}), ShouldBeNil)
		now = now.Add(24 * time.Hour)

		_, err := s.Get(ctx, "hero|")
		So(err, ShouldBeNil)
	})

	Convey("Put replaces the previous snapshot under the same key", t, func() {
		s := repository.NewMemory()

		So(s.Put(ctx, "hero|", &snapshot.Snapshot{TotalTracks: 10}), ShouldBeNil)
		So(s.Put(ctx, "hero|", &snapshot.Snapshot{TotalTracks: 20}), ShouldBeNil)

		got, err := s.Get(ctx, "hero|")
		So(err, ShouldBeNil)
		So(got.TotalTracks, ShouldEqual, 20)
		So(s.Count(ctx), ShouldEqual, 1)
	})
}
