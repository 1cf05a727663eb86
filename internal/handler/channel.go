package handler

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/jackdevtech455/youtube-analytics/internal/middleware"
	"github.com/jackdevtech455/youtube-analytics/internal/service"
)

// maxChannelMetaIDs caps one lookup request at the provider's batch size.
const maxChannelMetaIDs = 50

type ChannelHandler struct {
	svc *service.ChannelMetaService
}

func NewChannelHandler(svc *service.ChannelMetaService) *ChannelHandler {
	return &ChannelHandler{svc: svc}
}

// Meta handles GET /api/channels/meta?ids=UC...,UC...
func (h *ChannelHandler) Meta(c fiber.Ctx) error {
	raw := fiber.Query[string](c, "ids")
	if strings.TrimSpace(raw) == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "ids is required")
	}

	var ids []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "ids is required")
	}
	if len(ids) > maxChannelMetaIDs {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "at most 50 ids per request")
	}

	channels, err := h.svc.Lookup(c.Context(), ids)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "Channel metadata lookup failed")
	}

	return c.JSON(fiber.Map{"channels": channels})
}
