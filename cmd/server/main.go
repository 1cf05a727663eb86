package main

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/jackdevtech455/youtube-analytics/internal/config"
	"github.com/jackdevtech455/youtube-analytics/internal/db"
	"github.com/jackdevtech455/youtube-analytics/internal/handler"
	"github.com/jackdevtech455/youtube-analytics/internal/metrics"
	"github.com/jackdevtech455/youtube-analytics/internal/middleware"
	"github.com/jackdevtech455/youtube-analytics/internal/repository"
	"github.com/jackdevtech455/youtube-analytics/internal/router"
	"github.com/jackdevtech455/youtube-analytics/internal/service"
	"github.com/jackdevtech455/youtube-analytics/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "tracker-api")
	log := middleware.Logger

	ctx := context.Background()
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

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	clock := service.NewClock()
	trackerRepo := repository.NewTrackerRepo(pool)
	videoRepo := repository.NewVideoRepo(pool)

	trackerSvc := service.NewTrackerService(trackerRepo, yt)
	rankingSvc := service.NewRankingService(pool, clock)
	channelMetaSvc := service.NewChannelMetaService(yt, cache, log)

	h := &router.Handlers{
		Tracker: handler.NewTrackerHandler(trackerSvc, rankingSvc),
		Video:   handler.NewVideoHandler(videoRepo, clock),
		Channel: handler.NewChannelHandler(channelMetaSvc),
		Health:  handler.NewHealthHandler(pool, cache.Client()),
	}

	app := fiber.New(fiber.Config{
		AppName:      "Tracker API",
		ServerHeader: "tracker",
	})
	router.Setup(app, h, cfg.CORSOrigins)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("api starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
