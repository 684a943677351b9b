package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openevent/runsheet-api/internal/dto"
	"github.com/openevent/runsheet-api/internal/service"
	"github.com/openevent/runsheet-api/internal/utils"
)

// ExecutionHandler wires the state-machine endpoints.
type ExecutionHandler struct {
	service   service.ExecutionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewExecutionHandler constructs the handler.
func NewExecutionHandler(service service.ExecutionService, validator *validator.Validate, logger zerolog.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "execution_handler").Logger(),
	}
}

// Register attaches the execution endpoints to the router group.
func (h *ExecutionHandler) Register(router fiber.Router) {
	router.Post("/:id/start", h.start)
	router.Post("/:id/complete", h.complete)
	router.Post("/:id/skip", h.skip)
}

func (h *ExecutionHandler) start(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TransitionRequest
	_ = c.BodyParser(&payload)

	activity, err := h.service.Start(c.Context(), id, payload.Actor)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "activity started", activity)
}

func (h *ExecutionHandler) complete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TransitionRequest
	_ = c.BodyParser(&payload)

	activity, err := h.service.Complete(c.Context(), id, payload.Actor)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "activity completed", activity)
}

func (h *ExecutionHandler) skip(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SkipRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "reason required")
	}

	activity, err := h.service.Skip(c.Context(), id, payload.Reason, payload.Actor)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "activity skipped", activity)
}
