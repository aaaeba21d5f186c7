// Command analyze runs a single analysis from the terminal and writes the
// HTML and JSON reports, mirroring what the HTTP service serves.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/dkr"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/report"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/app"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/config"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/planner"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/snapshot"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/timecode"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
)

func main() {
	user := flag.String("user", "", "player username (overrides configuration)")
	rival := flag.String("rival", "", "overtake target (defaults to the player directly above)")
	output := flag.String("output", "", "output directory (overrides configuration)")
	clearCache := flag.Bool("clear-cache", false, "clear cached pages before running")
	flag.Parse()

	if err := run(*user, *rival, *output, *clearCache); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(user, rival, output string, clearCache bool) error {
	if err := logger.Init(); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	if user == "" {
		user = cfg.Username
	}
	if output == "" {
		output = cfg.OutputDir
	}

	client, err := dkr.New(
		dkr.WithBaseURL(cfg.BaseURL),
		dkr.WithCacheDir(cfg.CacheDir),
		dkr.WithCacheTTL(time.Duration(cfg.CacheTTLHours*float64(time.Hour))),
		dkr.WithRequestDelay(time.Duration(cfg.RequestDelayMS)*time.Millisecond),
	)
	if err != nil {
		return err
	}
	if clearCache {
		fmt.Println("Clearing cache...")
		if err := client.ClearCache(); err != nil {
			return err
		}
	}

	overrides := make([]app.TimeOverride, 0, len(cfg.TimeOverrides))
	for _, o := range cfg.TimeOverrides {
		timeCS, err := timecode.Parse(o.Time)
		if err != nil {
			return fmt.Errorf("time override %s: %w", o.Track, err)
		}
		category := o.Category
		if category == "" {
			category = model.CategoryStandard
		}
		overrides = append(overrides, app.TimeOverride{
			Variant: model.TrackVariant{Slug: o.Track, Vehicle: o.Vehicle, Category: category, Laps: o.Laps},
			TimeCS:  timeCS,
		})
	}

	exclude := make([]planner.Exclusion, 0, len(cfg.ExcludeFromPlans))
	for _, x := range cfg.ExcludeFromPlans {
		exclude = append(exclude, planner.Exclusion{Slug: x.Track, Vehicle: x.Vehicle})
	}

	svc := app.New(client,
		app.WithFetchWorkers(cfg.FetchWorkers),
		app.WithDefaultUsername(cfg.Username),
		app.WithDefaultRival(cfg.Rival),
		app.WithTimeOverrides(overrides),
		app.WithExclusions(exclude),
	)

	fmt.Printf("Analyzing %s...\n", user)
	snap, err := svc.Analyze(ctx, user, rival)
	if err != nil {
		return err
	}

	htmlPath, jsonPath, err := report.Write(output, snap)
	if err != nil {
		return err
	}

	printSummary(snap, user)

	if abs, err := filepath.Abs(htmlPath); err == nil {
		htmlPath = abs
	}
	if abs, err := filepath.Abs(jsonPath); err == nil {
		jsonPath = abs
	}
	fmt.Printf("\n  HTML report: %s\n  JSON report: %s\n", htmlPath, jsonPath)
	return nil
}

func printSummary(snap *snapshot.Snapshot, user string) {
	var naOpps, rankedOpps []int
	for i, o := range snap.Opportunities {
		switch {
		case o.IsNA && len(o.Tiers) > 0:
			naOpps = append(naOpps, i)
		case !o.IsNA && len(o.Tiers) > 0:
			rankedOpps = append(rankedOpps, i)
		}
	}

	line := "============================================================"
	fmt.Printf("\n%s\n", line)
	fmt.Printf("  Player:         %s\n", user)
	fmt.Printf("  Combined Rank:  #%d\n", snap.CurrentRank)
	fmt.Printf("  Average Finish: %.4f\n", snap.CurrentAF)
	fmt.Printf("  N/A tracks:     %d (submit any time for a big boost)\n", len(naOpps))
	fmt.Printf("  Improvable:     %d tracks\n", len(rankedOpps))
	fmt.Println(line)

	if len(naOpps) > 0 {
		fmt.Println("\n  Top priority - submit times for:")
		for _, i := range naOpps[:min(5, len(naOpps))] {
			v := snap.Opportunities[i].Variant
			fmt.Printf("    - %s (%s/%s/%s)\n", v.Name, v.Vehicle, v.Category, v.Laps)
		}
	}

	if len(rankedOpps) > 0 {
		fmt.Println("\n  Best efficiency improvements:")
		for _, i := range rankedOpps[:min(5, len(rankedOpps))] {
			o := snap.Opportunities[i]
			t := o.Tiers[o.BestTierIdx]
			fmt.Printf("    - %s (%s/%s/%s): rank %d -> %d, need %s faster, AF -%.4f\n",
				o.Variant.Name, o.Variant.Vehicle, o.Variant.Category, o.Variant.Laps,
				o.CurrentRank, t.TargetRank, timecode.Format(t.TimeDeltaCS), t.AFImprovement)
		}
	}

	printPlan("Min time", snap.PlanMinTime)
	printPlan("Min tracks", snap.PlanMinTracks)
}

func printPlan(label string, plan *planner.Plan) {
	if plan == nil {
		return
	}
	if !plan.Feasible {
		fmt.Printf("\n  %s: not enough improvement available to overtake %s\n", label, plan.RivalUsername)
		return
	}
	fmt.Printf("\n  %s: overtake %s (AF %.4f) with %d tracks, %s total improvement\n",
		label, plan.RivalUsername, plan.RivalAF, len(plan.Items),
		timecode.Format(plan.TotalTimeInvestmentCS))
}
