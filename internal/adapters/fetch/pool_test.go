package fetch_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/dkr"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/fetch"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeSource struct {
	mu      sync.Mutex
	boards  map[string][]model.LeaderboardEntry
	missing map[string]bool
	failing map[string]bool
	calls   int
}

func (f *fakeSource) Leaderboard(_ context.Context, v model.TrackVariant) ([]model.LeaderboardEntry, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	key := v.Key()
	switch {
	case f.failing[key]:
		return nil, errors.New("connection reset")
	case f.missing[key]:
		return nil, dkr.ErrNotFound
	default:
		return f.boards[key], nil
	}
}

func variants(slugs ...string) []model.TrackVariant {
	vs := make([]model.TrackVariant, len(slugs))
	for i, slug := range slugs {
		vs[i] = model.TrackVariant{
			Slug:     slug,
			Vehicle:  model.VehicleCar,
			Category: model.CategoryStandard,
			Laps:     model.LapsThree,
		}
	}
	return vs
}

func TestFetchAll(t *testing.T) {
	ctx := context.Background()

	Convey("All boards are fetched and keyed by variant", t, func() {
		vs := variants("a", "b", "c")
		src := &fakeSource{boards: map[string][]model.LeaderboardEntry{
			vs[0].Key(): {{Rank: 1, Username: "x", TimeCS: 100}},
			vs[1].Key(): {{Rank: 1, Username: "y", TimeCS: 200}},
			vs[2].Key(): {{Rank: 1, Username: "z", TimeCS: 300}},
		}}
		pool := fetch.New(src, fetch.WithWorkers(2))

		boards, skipped, err := pool.FetchAll(ctx, vs)

		So(err, ShouldBeNil)
		So(skipped, ShouldEqual, 0)
		So(boards, ShouldHaveLength, 3)
		So(boards[vs[1].Key()][0].Username, ShouldEqual, "y")
	})

	Convey("Missing boards are skipped, not errored", t, func() {
		vs := variants("a", "b", "c")
		src := &fakeSource{
			boards:  map[string][]model.LeaderboardEntry{vs[0].Key(): {}},
			missing: map[string]bool{vs[1].Key(): true, vs[2].Key(): true},
		}
		pool := fetch.New(src, fetch.WithWorkers(3))

		boards, skipped, err := pool.FetchAll(ctx, vs)

		So(err, ShouldBeNil)
		So(skipped, ShouldEqual, 2)
		So(boards, ShouldHaveLength, 1)
	})

	Convey("A hard failure surfaces and aborts the run", t, func() {
		vs := variants("a", "b")
		src := &fakeSource{failing: map[string]bool{vs[0].Key(): true}}
		pool := fetch.New(src, fetch.WithWorkers(1))

		boards, _, err := pool.FetchAll(ctx, vs)

		So(err, ShouldNotBeNil)
		So(boards, ShouldBeNil)
	})

	Convey("An empty variant list is a no-op", t, func() {
		src := &fakeSource{}
		pool := fetch.New(src)

		boards, skipped, err := pool.FetchAll(ctx, nil)

		So(err, ShouldBeNil)
		So(skipped, ShouldEqual, 0)
		So(boards, ShouldBeEmpty)
		So(src.calls, ShouldEqual, 0)
	})
}
