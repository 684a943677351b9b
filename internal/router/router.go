package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openevent/runsheet-api/internal/config"
	"github.com/openevent/runsheet-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ScheduleHandler  *handler.ScheduleHandler
	ExecutionHandler *handler.ExecutionHandler
	TrackerHandler   *handler.TrackerHandler
	ReportHandler    *handler.ReportHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.ScheduleHandler != nil {
		deps.ScheduleHandler.Register(api.Group("/schedule"))
	}

	if deps.ExecutionHandler != nil {
		deps.ExecutionHandler.Register(api.Group("/activities"))
	}

	if deps.TrackerHandler != nil {
		deps.TrackerHandler.Register(api.Group("/tracker"))
	}

	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(api.Group("/reports"))
	}
}
