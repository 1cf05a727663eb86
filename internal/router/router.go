package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/jackdevtech455/youtube-analytics/internal/handler"
	"github.com/jackdevtech455/youtube-analytics/internal/metrics"
	"github.com/jackdevtech455/youtube-analytics/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Tracker *handler.TrackerHandler
	Video   *handler.VideoHandler
	Channel *handler.ChannelHandler
	Health  *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(metrics.Middleware())

	// Probes and metrics (outside the API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", metrics.Handler())

	// API routes
	api := app.Group("/api")

	// Tracker routes
	api.Post("/trackers", h.Tracker.Create)
	api.Get("/trackers", h.Tracker.List)
	api.Get("/trackers/:id", h.Tracker.Get)
	api.Patch("/trackers/:id", h.Tracker.Patch)
	api.Delete("/trackers/:id", h.Tracker.Delete)
	api.Get("/trackers/:id/top-videos", h.Tracker.TopVideos)

	// Video routes
	api.Get("/videos/:videoId/timeseries", h.Video.Timeseries)

	// Channel routes
	api.Get("/channels/meta", h.Channel.Meta)
}
