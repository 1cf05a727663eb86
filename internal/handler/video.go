package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/jackdevtech455/youtube-analytics/internal/middleware"
	"github.com/jackdevtech455/youtube-analytics/internal/model"
	"github.com/jackdevtech455/youtube-analytics/internal/repository"
	"github.com/jackdevtech455/youtube-analytics/internal/service"
)

// Timeseries lookback bounds, in days.
const (
	defaultTimeseriesDays = 7
	maxTimeseriesDays     = 90
)

type VideoHandler struct {
	repo  *repository.VideoRepo
	clock service.Clock
}

func NewVideoHandler(repo *repository.VideoRepo, clock service.Clock) *VideoHandler {
	return &VideoHandler{repo: repo, clock: clock}
}

// Timeseries handles GET /api/videos/:videoId/timeseries?metric=view_count&days=7
func (h *VideoHandler) Timeseries(c fiber.Ctx) error {
	videoID := c.Params("videoId")
	if videoID == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "videoId is required")
	}

	metric := fiber.Query[string](c, "metric", "view_count")
	if !repository.ValidTimeseriesMetric(metric) {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD",
			"metric must be one of view_count, like_count, comment_count")
	}

	days := fiber.Query[int](c, "days", defaultTimeseriesDays)
	if days < 1 || days > maxTimeseriesDays {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "days must be between 1 and 90")
	}

	video, err := h.repo.FindByVideoID(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch video")
	}

	since := h.clock.Now().Add(-time.Duration(days) * 24 * time.Hour)
	points, err := h.repo.Timeseries(c.Context(), videoID, metric, since)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch timeseries")
	}
	if points == nil {
		points = []model.TimeSeriesPoint{}
	}

	return c.JSON(fiber.Map{
		"videoId": video.VideoID,
		"metric":  metric,
		"points":  points,
	})
}
