package metrics_test

import (
	"testing"

	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then the custom registry is available", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})

		Convey("When recording source metrics", func() {
			So(func() {
				metrics.RecordPageFetch("leaderboard")
				metrics.RecordCacheHit()
				metrics.RecordCacheMiss()
				metrics.RecordFetchNotFound()
				metrics.RecordFetchError()
				metrics.RecordParseError("player")
			}, ShouldNotPanic)

			Convey("Then the registry gathers them", func() {
				families, err := metrics.GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["dkr_optimizer_pages_fetched_total"], ShouldBeTrue)
				So(names["dkr_optimizer_cache_hits_total"], ShouldBeTrue)
			})
		})

		Convey("When recording analysis and plan metrics", func() {
			So(func() {
				metrics.UpdateLeaderboardsInScope(228)
				metrics.RecordAnalysis()
				metrics.RecordAnalysisDuration(12.5)
				metrics.RecordPlanDuration("min-time", 3.2)
				metrics.RecordPlanInfeasible("min-tracks")
				metrics.UpdateSnapshotCount(1)
				metrics.UpdateFetchWorkers(4)
			}, ShouldNotPanic)
		})
	})
}

func TestNewManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithPrometheusRegistry(reg),
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("opt"),
			metrics.WithHistogramBuckets([]float64{1, 10, 100}),
		)

		Convey("Then it registers its metrics there", func() {
			So(m, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			// Counters without observations gather empty; gauges appear once set.
			So(families, ShouldNotBeNil)
		})
	})
}
