package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/jackdevtech455/youtube-analytics/internal/middleware"
	"github.com/jackdevtech455/youtube-analytics/internal/model"
	"github.com/jackdevtech455/youtube-analytics/internal/service"
)

type TrackerHandler struct {
	svc     *service.TrackerService
	ranking *service.RankingService
}

func NewTrackerHandler(svc *service.TrackerService, ranking *service.RankingService) *TrackerHandler {
	return &TrackerHandler{svc: svc, ranking: ranking}
}

func parseTrackerID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

// Create handles POST /api/trackers
func (h *TrackerHandler) Create(c fiber.Ctx) error {
	var req model.TrackerCreate
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Malformed JSON body")
	}

	tracker, err := h.svc.Create(c.Context(), req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", ve.Message)
		case errors.Is(err, service.ErrChannelNotFound):
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "CHANNEL_NOT_FOUND", "Channel reference did not resolve")
		case errors.Is(err, service.ErrResolveUnavailable):
			return middleware.ErrorResponse(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "Channel resolution failed upstream")
		default:
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create tracker")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(tracker)
}

// List handles GET /api/trackers
func (h *TrackerHandler) List(c fiber.Ctx) error {
	trackers, err := h.svc.List(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list trackers")
	}
	if trackers == nil {
		trackers = []model.Tracker{}
	}
	return c.JSON(trackers)
}

// Get handles GET /api/trackers/:id
func (h *TrackerHandler) Get(c fiber.Ctx) error {
	id, err := parseTrackerID(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", err.Error())
	}

	tracker, err := h.svc.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Tracker not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch tracker")
	}
	return c.JSON(tracker)
}

// Patch handles PATCH /api/trackers/:id
func (h *TrackerHandler) Patch(c fiber.Ctx) error {
	id, err := parseTrackerID(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", err.Error())
	}

	var req model.TrackerPatch
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Malformed JSON body")
	}

	tracker, err := h.svc.Patch(c.Context(), id, req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", ve.Message)
		case errors.Is(err, pgx.ErrNoRows):
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Tracker not found")
		default:
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update tracker")
		}
	}
	return c.JSON(tracker)
}

// Delete handles DELETE /api/trackers/:id
func (h *TrackerHandler) Delete(c fiber.Ctx) error {
	id, err := parseTrackerID(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", err.Error())
	}

	if err := h.svc.Delete(c.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Tracker not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete tracker")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TopVideos handles GET /api/trackers/:id/top-videos
func (h *TrackerHandler) TopVideos(c fiber.Ctx) error {
	id, err := parseTrackerID(c)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", err.Error())
	}

	// Confirm the tracker exists so unknown IDs 404 instead of returning an
	// empty ranking.
	if _, err := h.svc.Get(c.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Tracker not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch tracker")
	}

	videos, err := h.ranking.TopVideos(c.Context(), id)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to rank videos")
	}

	return c.JSON(fiber.Map{
		"trackerId": id,
		"videos":    videos,
	})
}
