package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openevent/runsheet-api/internal/service"
	"github.com/openevent/runsheet-api/internal/utils"
)

// ScheduleHandler wires the read-only runsheet endpoints.
type ScheduleHandler struct {
	schedule       service.ScheduleService
	execution      service.ExecutionService
	defaultVariant string
	logger         zerolog.Logger
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(schedule service.ScheduleService, execution service.ExecutionService, defaultVariant string, logger zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedule:       schedule,
		execution:      execution,
		defaultVariant: defaultVariant,
		logger:         logger.With().Str("component", "schedule_handler").Logger(),
	}
}

// Register attaches schedule endpoints to the router group.
func (h *ScheduleHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/transitions", h.transitions)
}

func (h *ScheduleHandler) list(c *fiber.Ctx) error {
	day, err := parseDayQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	variant := variantQuery(c, h.defaultVariant)

	activities, err := h.schedule.List(c.Context(), day, variant)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "schedule retrieved", activities)
}

func (h *ScheduleHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	activity, err := h.schedule.Get(c.Context(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "activity retrieved", activity)
}

func (h *ScheduleHandler) transitions(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.execution.Transitions(c.Context(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "transitions retrieved", entries)
}
