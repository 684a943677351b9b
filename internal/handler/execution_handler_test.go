package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openevent/runsheet-api/internal/config"
	"github.com/openevent/runsheet-api/internal/handler"
	"github.com/openevent/runsheet-api/internal/models"
	"github.com/openevent/runsheet-api/internal/repository"
	"github.com/openevent/runsheet-api/internal/router"
	"github.com/openevent/runsheet-api/internal/service"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Activity{}, &models.TransitionLog{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()

	activityRepo := repository.NewActivityRepository(db)
	transitionRepo := repository.NewTransitionLogRepository(db)

	scheduleService := service.NewScheduleService(activityRepo, logger)
	executionService := service.NewExecutionService(activityRepo, transitionRepo, logger)
	trackerService := service.NewTrackerService(activityRepo, time.UTC, 5, logger)
	reportService := service.NewReportService(activityRepo, nil, time.Minute, 3, logger)
	exportService := service.NewExportService(activityRepo, 3, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Runsheet Test"}, router.Dependencies{
		ScheduleHandler:  handler.NewScheduleHandler(scheduleService, executionService, "official", logger),
		ExecutionHandler: handler.NewExecutionHandler(executionService, validate, logger),
		TrackerHandler:   handler.NewTrackerHandler(trackerService, "official", logger),
		ReportHandler:    handler.NewReportHandler(reportService, exportService, "official", logger),
	})

	return app, db
}

func seedPending(t *testing.T, db *gorm.DB, position int, title string) models.Activity {
	t.Helper()
	activity := models.Activity{
		Day:             models.EventDayD1,
		ScheduleVariant: "official",
		Position:        position,
		Title:           title,
		ExecutionStatus: models.StatusPending,
	}
	require.NoError(t, db.Create(&activity).Error)
	return activity
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, path, nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) (bool, string, map[string]interface{}) {
	t.Helper()
	defer resp.Body.Close()
	var payload struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload.Success, payload.Message, payload.Data
}

func TestStartCompleteFlow(t *testing.T) {
	app, db := setupApp(t)
	activity := seedPending(t, db, 1, "Keynote")

	resp := postJSON(t, app, fmt.Sprintf("/api/v1/activities/%d/start", activity.ID), `{"actor":"alex"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	success, _, data := decodeEnvelope(t, resp)
	require.True(t, success)
	require.Equal(t, string(models.StatusInProgress), data["execution_status"])
	require.NotNil(t, data["actual_start"])

	resp = postJSON(t, app, fmt.Sprintf("/api/v1/activities/%d/complete", activity.ID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_, _, data = decodeEnvelope(t, resp)
	require.Equal(t, string(models.StatusCompleted), data["execution_status"])
	require.NotNil(t, data["actual_duration_minutes"])
}

func TestStartTwiceReturnsUnprocessable(t *testing.T) {
	app, db := setupApp(t)
	activity := seedPending(t, db, 1, "Keynote")

	resp := postJSON(t, app, fmt.Sprintf("/api/v1/activities/%d/start", activity.ID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, fmt.Sprintf("/api/v1/activities/%d/start", activity.ID), "")
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	success, message, _ := decodeEnvelope(t, resp)
	require.False(t, success)
	require.Contains(t, message, "cannot start")
}

func TestStartConflictsWithRunningSibling(t *testing.T) {
	app, db := setupApp(t)
	first := seedPending(t, db, 1, "Keynote")
	second := seedPending(t, db, 2, "Panel")

	resp := postJSON(t, app, fmt.Sprintf("/api/v1/activities/%d/start", first.ID), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, fmt.Sprintf("/api/v1/activities/%d/start", second.ID), "")
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	_, message, _ := decodeEnvelope(t, resp)
	require.Contains(t, message, "Keynote")
}

func TestSkipWithoutReasonIsBadRequest(t *testing.T) {
	app, db := setupApp(t)
	activity := seedPending(t, db, 1, "Keynote")

	resp := postJSON(t, app, fmt.Sprintf("/api/v1/activities/%d/skip", activity.ID), `{"reason":""}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	success, message, _ := decodeEnvelope(t, resp)
	require.False(t, success)
	require.Equal(t, "reason required", message)
}

func TestSkipStoresReason(t *testing.T) {
	app, db := setupApp(t)
	activity := seedPending(t, db, 1, "Keynote")

	resp := postJSON(t, app, fmt.Sprintf("/api/v1/activities/%d/skip", activity.ID), `{"reason":"speaker cancelled"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_, _, data := decodeEnvelope(t, resp)
	require.Equal(t, string(models.StatusSkipped), data["execution_status"])
	require.Equal(t, "speaker cancelled", data["skip_note"])
	require.Nil(t, data["actual_start"])
}

func TestUnknownActivityIsNotFound(t *testing.T) {
	app, _ := setupApp(t)

	resp := postJSON(t, app, "/api/v1/activities/999/start", "")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTransitionsEndpointListsAudit(t *testing.T) {
	app, db := setupApp(t)
	activity := seedPending(t, db, 1, "Keynote")

	resp := postJSON(t, app, fmt.Sprintf("/api/v1/activities/%d/start", activity.ID), `{"actor":"alex"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/schedule/%d/transitions", activity.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Data, 1)
	require.Equal(t, "alex", payload.Data[0]["actor"])
	require.Equal(t, string(models.StatusInProgress), payload.Data[0]["to_status"])
}
