package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openevent/runsheet-api/internal/service"
	"github.com/openevent/runsheet-api/internal/utils"
)

// TrackerHandler wires the live reconciliation endpoint.
type TrackerHandler struct {
	service        service.TrackerService
	defaultVariant string
	logger         zerolog.Logger
}

// NewTrackerHandler constructs the handler.
func NewTrackerHandler(service service.TrackerService, defaultVariant string, logger zerolog.Logger) *TrackerHandler {
	return &TrackerHandler{
		service:        service,
		defaultVariant: defaultVariant,
		logger:         logger.With().Str("component", "tracker_handler").Logger(),
	}
}

// Register attaches the tracker endpoint to the router group.
func (h *TrackerHandler) Register(router fiber.Router) {
	router.Get("", h.snapshot)
}

func (h *TrackerHandler) snapshot(c *fiber.Ctx) error {
	day, err := parseDayQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	variant := variantQuery(c, h.defaultVariant)

	snapshot, err := h.service.Snapshot(c.Context(), day, variant)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "tracker snapshot generated", snapshot)
}
