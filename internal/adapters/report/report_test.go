package report_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/report"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/analysis"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/planner"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	ranked := model.TrackVariant{
		Slug: "ancient-lake", Name: "Ancient Lake",
		Vehicle: model.VehicleCar, Category: model.CategoryStandard, Laps: model.LapsThree,
	}
	na := model.TrackVariant{
		Slug: "fossil-canyon", Name: "Fossil Canyon",
		Vehicle: model.VehiclePlane, Category: model.CategoryStandard, Laps: model.LapsThree,
	}
	return &snapshot.Snapshot{
		Profile:     model.PlayerProfile{Username: "Hero", CombinedRank: 12, CurrentAF: 5.43},
		CurrentAF:   5.43,
		CurrentRank: 12,
		TotalTracks: 40,
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Opportunities: []analysis.Opportunity{
			{
				Variant: na, IsNA: true, CurrentRank: 30,
				Tiers:          []analysis.Tier{{TargetRank: 28, PositionsGained: 2, Efficiency: analysis.EffInfinite}},
				BestEfficiency: analysis.EffInfinite,
			},
			{
				Variant: ranked, CurrentRank: 5, CurrentTimeCS: 10000,
				Tiers: []analysis.Tier{{
					TargetRank: 4, OpponentTimeCS: 9600, TargetTimeCS: 9599,
					PositionsGained: 1, AFImprovement: 0.025, TimeDeltaCS: 401, Efficiency: 0.025 / 401,
				}},
				BestEfficiency: 0.025 / 401,
			},
		},
		PlanMinTime: &planner.Plan{
			RivalUsername: "Rival", RivalAF: 5.2, CurrentAF: 5.43, AFGap: 0.23,
			TotalPositionsNeeded: 10, TotalPositionsGained: 10,
			TotalTimeInvestmentCS: 1234, NewAF: 5.18, Feasible: true,
			Items: []planner.PlanItem{{
				Variant: ranked, CurrentRank: 5, CurrentTimeCS: 10000, NewRank: 4,
				TargetTimeCS: 9599, OpponentTimeCS: 9600, PositionsGained: 1,
				AFImprovement: 0.025, TimeDeltaCS: 401,
			}},
		},
	}
}

func TestWrite(t *testing.T) {
	Convey("Write produces both report files", t, func() {
		dir := t.TempDir()
		out := filepath.Join(dir, "nested", "output")

		htmlPath, jsonPath, err := report.Write(out, testSnapshot())

		So(err, ShouldBeNil)
		So(htmlPath, ShouldEqual, filepath.Join(out, "index.html"))
		So(jsonPath, ShouldEqual, filepath.Join(out, "report.json"))

		Convey("The JSON round-trips with raw values intact", func() {
			raw, err := os.ReadFile(jsonPath)
			So(err, ShouldBeNil)

			var got snapshot.Snapshot
			So(json.Unmarshal(raw, &got), ShouldBeNil)
			So(got.CurrentAF, ShouldAlmostEqual, 5.43)
			So(got.Opportunities, ShouldHaveLength, 2)
			So(got.PlanMinTime.TotalTimeInvestmentCS, ShouldEqual, 1234)
		})

		Convey("The HTML renders times and the infinity marker", func() {
			raw, err := os.ReadFile(htmlPath)
			So(err, ShouldBeNil)
			page := string(raw)

			So(page, ShouldContainSubstring, "Hero")
			So(page, ShouldContainSubstring, "Ancient Lake")
			So(page, ShouldContainSubstring, "00:04.01")
			So(page, ShouldContainSubstring, "Fossil Canyon")
			So(page, ShouldContainSubstring, "Overtake plan (least time)")
			So(page, ShouldContainSubstring, "Rival")
		})
	})

	Convey("A snapshot without plans still renders", t, func() {
		snap := testSnapshot()
		snap.PlanMinTime = nil

		htmlPath, _, err := report.Write(t.TempDir(), snap)

		So(err, ShouldBeNil)
		raw, err := os.ReadFile(htmlPath)
		So(err, ShouldBeNil)
		So(string(raw), ShouldNotContainSubstring, "Overtake plan")
	})
}
