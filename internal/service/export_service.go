package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/openevent/runsheet-api/internal/models"
	"github.com/openevent/runsheet-api/internal/repository"
)

// ExportService renders the report content contract consumed by external
// CSV/PDF renderers: one flat row per activity in day/position order plus
// per-type and per-day summary sections.
type ExportService interface {
	CSV(ctx context.Context, variant string) ([]byte, error)
}

type exportService struct {
	activities       repository.ActivityRepository
	toleranceMinutes int
	logger           zerolog.Logger
	now              func() time.Time
}

// NewExportService constructs the exporter. It shares the report tolerance
// so summary sections match the summary endpoint figure for figure.
func NewExportService(activities repository.ActivityRepository, toleranceMinutes int, logger zerolog.Logger) ExportService {
	return &exportService{
		activities:       activities,
		toleranceMinutes: toleranceMinutes,
		logger:           logger.With().Str("component", "export_service").Logger(),
		now:              time.Now,
	}
}

func (s *exportService) CSV(ctx context.Context, variant string) ([]byte, error) {
	activities, err := s.activities.ListAll(ctx, variant)
	if err != nil {
		return nil, storeErr("csv export", err)
	}

	summary := buildReportSummary(variant, activities, s.toleranceMinutes, s.now())

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{{
		"day", "position", "title", "type", "location",
		"scheduled_start", "scheduled_end", "actual_start", "actual_end",
		"planned_minutes", "actual_minutes", "diff_minutes", "status",
	}}
	for _, activity := range activities {
		records = append(records, activityRow(activity))
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	buf.WriteString("\n")

	records = [][]string{
		{"TYPE SUMMARY"},
		{"type", "completed", "planned_minutes", "actual_minutes", "avg_diff_minutes"},
	}
	for _, row := range summary.ByType {
		records = append(records, []string{
			row.Type,
			strconv.Itoa(row.Completed),
			strconv.Itoa(row.PlannedMinutes),
			strconv.Itoa(row.ActualMinutes),
			strconv.Itoa(row.AvgDiffMinutes),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	buf.WriteString("\n")

	records = [][]string{
		{"DAY SUMMARY"},
		{"day", "planned_minutes", "actual_minutes", "diff_minutes"},
	}
	for _, row := range summary.ByDay {
		records = append(records, []string{
			string(row.Day),
			strconv.Itoa(row.PlannedMinutes),
			strconv.Itoa(row.ActualMinutes),
			strconv.Itoa(row.DiffMinutes),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func activityRow(activity models.Activity) []string {
	row := []string{
		string(activity.Day),
		strconv.Itoa(activity.Position),
		activity.Title,
		activity.Type,
		activity.Location,
		stringOrEmpty(activity.ScheduledStart),
		stringOrEmpty(activity.ScheduledEnd),
		timeOrEmpty(activity.ActualStart),
		timeOrEmpty(activity.ActualEnd),
		intOrEmpty(activity.PlannedDurationMinutes),
		intOrEmpty(activity.ActualDurationMinutes),
		"",
		string(activity.ExecutionStatus),
	}
	if diff, ok := activity.DurationDiffMinutes(); ok {
		row[11] = signedMinutes(diff)
	}
	return row
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func timeOrEmpty(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func intOrEmpty(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func signedMinutes(diff int) string {
	if diff > 0 {
		return "+" + strconv.Itoa(diff)
	}
	return strconv.Itoa(diff)
}
