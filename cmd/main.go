package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/dkr"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/adapters/http/api"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/app"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/config"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/model"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/planner"
	"github.com/AlessandroFlati/DKRRankingOptimizer/internal/domain/timecode"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/logger"
	"github.com/AlessandroFlati/DKRRankingOptimizer/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 120 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	client, err := dkr.New(
		dkr.WithBaseURL(cfg.BaseURL),
		dkr.WithCacheDir(cfg.CacheDir),
		dkr.WithCacheTTL(time.Duration(cfg.CacheTTLHours*float64(time.Hour))),
		dkr.WithRequestDelay(time.Duration(cfg.RequestDelayMS)*time.Millisecond),
		dkr.WithLogger(log.Named("dkr")),
	)
	if err != nil {
		os.Stderr.WriteString("failed to create site client: " + err.Error() + "\n")
		return
	}

	overrides, err := buildOverrides(cfg.TimeOverrides)
	if err != nil {
		os.Stderr.WriteString("invalid time override: " + err.Error() + "\n")
		return
	}

	svc := app.New(client,
		app.WithLogger(log),
		app.WithFetchWorkers(cfg.FetchWorkers),
		app.WithSnapshotTTL(time.Duration(cfg.SnapshotTTLMinutes)*time.Minute),
		app.WithDefaultUsername(cfg.Username),
		app.WithDefaultRival(cfg.Rival),
		app.WithTimeOverrides(overrides),
		app.WithExclusions(buildExclusions(cfg.ExcludeFromPlans)),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = svc.Stop(context.Background())
	}()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildOverrides parses the configured override times into centiseconds.
func buildOverrides(raw []config.TimeOverride) ([]app.TimeOverride, error) {
	overrides := make([]app.TimeOverride, 0, len(raw))
	for _, o := range raw {
		timeCS, err := timecode.Parse(o.Time)
		if err != nil {
			return nil, err
		}
		category := o.Category
		if category == "" {
			category = model.CategoryStandard
		}
		overrides = append(overrides, app.TimeOverride{
			Variant: model.TrackVariant{
				Slug:     o.Track,
				Vehicle:  o.Vehicle,
				Category: category,
				Laps:     o.Laps,
			},
			TimeCS: timeCS,
		})
	}
	return overrides, nil
}

func buildExclusions(raw []config.PlanExclusion) []planner.Exclusion {
	exclude := make([]planner.Exclusion, 0, len(raw))
	for _, x := range raw {
		exclude = append(exclude, planner.Exclusion{Slug: x.Track, Vehicle: x.Vehicle})
	}
	return exclude
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
