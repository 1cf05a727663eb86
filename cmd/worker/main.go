package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jackdevtech455/youtube-analytics/internal/config"
	"github.com/jackdevtech455/youtube-analytics/internal/db"
	"github.com/jackdevtech455/youtube-analytics/internal/metrics"
	"github.com/jackdevtech455/youtube-analytics/internal/middleware"
	"github.com/jackdevtech455/youtube-analytics/internal/service"
	"github.com/jackdevtech455/youtube-analytics/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "tracker-worker")
	log := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	metrics.Register(pool)

	yt, err := youtube.NewClient(cfg.YouTubeAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("youtube client init failed")
	}

	// Worker metrics on a plain HTTP listener, separate from the API.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.WorkerMetricsAddr, mux); err != nil {
			log.Error().Err(err).Str("addr", cfg.WorkerMetricsAddr).Msg("metrics listener exited")
		}
	}()

	clock := service.NewClock()
	candidates := service.NewCandidateService(log)
	discovery := service.NewDiscoveryService(yt, candidates, log)
	snapshots := service.NewSnapshotService(yt, clock, log)

	worker := service.NewWorker(
		pool,
		discovery,
		snapshots,
		clock,
		cfg.ChannelDiscoveryIntervalMinutes,
		cfg.SearchDiscoveryIntervalMinutes,
		time.Duration(cfg.PollIntervalSeconds)*time.Second,
		log,
	)

	worker.Start(ctx)
	log.Info().Msg("worker exited")
}
