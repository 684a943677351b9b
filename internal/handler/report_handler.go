package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/openevent/runsheet-api/internal/service"
	"github.com/openevent/runsheet-api/internal/utils"
)

// ReportHandler wires the post-event reporting endpoints.
type ReportHandler struct {
	reports        service.ReportService
	exports        service.ExportService
	defaultVariant string
	logger         zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports service.ReportService, exports service.ExportService, defaultVariant string, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reports:        reports,
		exports:        exports,
		defaultVariant: defaultVariant,
		logger:         logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches report endpoints to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
	router.Get("/export.csv", h.exportCSV)
}

func (h *ReportHandler) summary(c *fiber.Ctx) error {
	variant := variantQuery(c, h.defaultVariant)

	summary, err := h.reports.Summary(c.Context(), variant)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "report summary generated", summary)
}

func (h *ReportHandler) exportCSV(c *fiber.Ctx) error {
	variant := variantQuery(c, h.defaultVariant)

	content, err := h.exports.CSV(c.Context(), variant)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "runsheet_"+variant+".csv"))
	return c.Send(content)
}
