package app_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/dkr/parse"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/app"
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
	mu          sync.Mutex
	page        *parse.PlayerPage
	ranking     []model.RankingEntry
	boards      map[string][]model.LeaderboardEntry
	playerCalls int
}

func (f *fakeSource) PlayerPage(_ context.Context, _ string) (*parse.PlayerPage, error) {
	f.mu.Lock()
	f.playerCalls++
	f.mu.Unlock()
	return f.page, nil
}

func (f *fakeSource) CombinedRanking(_ context.Context) ([]model.RankingEntry, error) {
	return f.ranking, nil
}

func (f *fakeSource) Leaderboard(_ context.Context, v model.TrackVariant) ([]model.LeaderboardEntry, error) {
	return f.boards[v.Key()], nil
}

func variant(slug string) model.TrackVariant {
	return model.TrackVariant{
		Slug:     slug,
		Name:     slug,
		Vehicle:  model.VehicleCar,
		Category: model.CategoryStandard,
		Laps:     model.LapsThree,
	}
}

// newWorld builds a three-variant scenario: one board where Hero trails
// one player, one he has no time on, and one where he trails two.
func newWorld() *fakeSource {
	a, b, c := variant("a"), variant("b"), variant("c")
	return &fakeSource{
		page: &parse.PlayerPage{
			Profile: model.PlayerProfile{Username: "Hero", CombinedRank: 3, CurrentAF: 5.0},
			Standings: []model.PlayerStanding{
				{Variant: a, Rank: 2, TimeCS: 10000},
				{Variant: b, IsNA: true},
				{Variant: c, Rank: 3, TimeCS: 9500},
			},
		},
		ranking: []model.RankingEntry{
			{Rank: 1, Username: "Top", AF: 4.0},
			{Rank: 2, Username: "Rival", AF: 4.8},
			{Rank: 3, Username: "Hero", AF: 5.0},
		},
		boards: map[string][]model.LeaderboardEntry{
			a.Key(): {
				{Rank: 1, Username: "X", TimeCS: 9000},
				{Rank: 2, Username: "Hero", TimeCS: 10000},
			},
			b.Key(): {
				{Rank: 1, Username: "X", TimeCS: 8000},
				{Rank: 2, Username: "Pad", IsDefault: true},
			},
			c.Key(): {
				{Rank: 1, Username: "X", TimeCS: 9000},
				{Rank: 2, Username: "Y", TimeCS: 9200},
				{Rank: 3, Username: "Hero", TimeCS: 9500},
			},
		},
	}
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()

	Convey("Analyze assembles a full snapshot against the player above", t, func() {
		src := newWorld()
		svc := app.New(src)

		snap, err := svc.Analyze(ctx, "Hero", "")

		So(err, ShouldBeNil)
		So(snap.CurrentAF, ShouldAlmostEqual, 5.0)
		So(snap.CurrentRank, ShouldEqual, 3)
		So(snap.TotalTracks, ShouldEqual, 3)
		So(snap.Opportunities, ShouldHaveLength, 3)

		Convey("The free submission alone closes the 0.2 gap", func() {
			So(snap.PlanMinTime, ShouldNotBeNil)
			So(snap.PlanMinTime.RivalUsername, ShouldEqual, "Rival")
			So(snap.PlanMinTime.Feasible, ShouldBeTrue)
			So(snap.PlanMinTime.TotalPositionsNeeded, ShouldEqual, 1)
			So(snap.PlanMinTime.Items, ShouldHaveLength, 1)
			So(snap.PlanMinTime.Items[0].IsNA, ShouldBeTrue)
			So(snap.PlanMinTime.TotalTimeInvestmentCS, ShouldEqual, 0)
		})

		Convey("The N/A opportunity leads the recommendation order", func() {
			So(snap.Opportunities[0].IsNA, ShouldBeTrue)
			So(snap.Opportunities[0].Variant.Slug, ShouldEqual, "b")
		})
	})

	Convey("An explicit rival deepens the requirement", t, func() {
		src := newWorld()
		svc := app.New(src)

		snap, err := svc.Analyze(ctx, "Hero", "Top")

		So(err, ShouldBeNil)
		So(snap.PlanMinTime.RivalUsername, ShouldEqual, "Top")
		// Gap 1.0 over 3 tracks needs 4 positions: the free one plus
		// every climbable position on both ranked boards.
		So(snap.PlanMinTime.TotalPositionsNeeded, ShouldEqual, 4)
		So(snap.PlanMinTime.Feasible, ShouldBeTrue)
		So(snap.PlanMinTime.TotalPositionsGained, ShouldEqual, 4)
		So(snap.PlanMinTime.TotalTimeInvestmentCS, ShouldEqual, 1502)
	})

	Convey("A rival absent from the ranking is an error", t, func() {
		src := newWorld()
		svc := app.New(src)

		_, err := svc.Analyze(ctx, "Hero", "Ghost")

		So(errors.Is(err, app.ErrRivalNotFound), ShouldBeTrue)
	})

	Convey("The ranking leader gets no plans", t, func() {
		src := newWorld()
		src.page.Profile = model.PlayerProfile{Username: "Top", CombinedRank: 1, CurrentAF: 4.0}
		svc := app.New(src)

		snap, err := svc.Analyze(ctx, "Top", "")

		So(err, ShouldBeNil)
		So(snap.PlanMinTime, ShouldBeNil)
		So(snap.PlanMinTracks, ShouldBeNil)
	})

	Convey("A fresh snapshot is served from the store", t, func() {
		src := newWorld()
		svc := app.New(src)

		first, err := svc.Analyze(ctx, "Hero", "")
		So(err, ShouldBeNil)
		second, err := svc.Analyze(ctx, "Hero", "")
		So(err, ShouldBeNil)

		So(second, ShouldEqual, first)
		So(src.playerCalls, ShouldEqual, 1)
	})

	Convey("Without a username or default the call fails", t, func() {
		svc := app.New(newWorld())

		_, err := svc.Analyze(ctx, "", "")

		So(errors.Is(err, app.ErrNoUsername), ShouldBeTrue)
	})

	Convey("Time overrides reshape standings, boards and the metric", t, func() {
		src := newWorld()
		svc := app.New(src, app.WithTimeOverrides([]app.TimeOverride{
			{Variant: variant("c"), TimeCS: 4800},
		}))

		snap, err := svc.Analyze(ctx, "Hero", "")

		So(err, ShouldBeNil)
		// Jumping from rank 3 to rank 1 on one of three boards moves the
		// average by two thirds.
		So(snap.CurrentAF, ShouldAlmostEqual, 5.0-2.0/3.0)

		Convey("The overridden board no longer offers climbs", func() {
			for _, opp := range snap.Opportunities {
				if opp.Variant.Slug == "c" {
					So(opp.CurrentRank, ShouldEqual, 1)
					So(opp.Tiers, ShouldBeEmpty)
				}
			}
		})
	})
}
