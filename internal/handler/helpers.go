package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openevent/runsheet-api/internal/models"
	"github.com/openevent/runsheet-api/internal/service"
	"github.com/openevent/runsheet-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseDayQuery(c *fiber.Ctx) (models.EventDay, error) {
	raw := strings.ToUpper(strings.TrimSpace(c.Query("day")))
	if raw == "" {
		return "", errors.New("day query parameter is required")
	}
	day := models.EventDay(raw)
	if !day.Valid() {
		return "", errors.New("unknown event day")
	}
	return day, nil
}

func variantQuery(c *fiber.Ctx, fallback string) string {
	variant := strings.TrimSpace(c.Query("variant"))
	if variant == "" {
		return fallback
	}
	return variant
}

// sendServiceError maps the service error taxonomy onto HTTP statuses.
// AlreadyRunning and Conflict both land on 409 but with distinct messages so
// the UI can tell "another activity is running" from "someone else just
// updated this".
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErr *service.ValidationError
	var transitionErr *service.InvalidTransitionError
	var runningErr *service.AlreadyRunningError
	var conflictErr *service.ConflictError
	var storeErr *service.StoreUnavailableError

	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "activity not found")
	case errors.As(err, &validationErr):
		return utils.SendError(c, fiber.StatusBadRequest, validationErr.Reason)
	case errors.As(err, &transitionErr):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, transitionErr.Error())
	case errors.As(err, &runningErr):
		return utils.SendError(c, fiber.StatusConflict, runningErr.Error())
	case errors.As(err, &conflictErr):
		return utils.SendError(c, fiber.StatusConflict, conflictErr.Error())
	case errors.As(err, &storeErr):
		logger.Error().Err(err).Msg("activity store unavailable")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "activity store unavailable")
	default:
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
