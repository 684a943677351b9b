package dto

import (
	"time"

	"github.com/openevent/runsheet-api/internal/models"
)

// TypeSummary aggregates completed activities sharing a type label.
type TypeSummary struct {
	Type           string `json:"type"`
	Completed      int    `json:"completed"`
	PlannedMinutes int    `json:"planned_minutes"`
	ActualMinutes  int    `json:"actual_minutes"`
	AvgDiffMinutes int    `json:"avg_diff_minutes"`
}

// DaySummary aggregates completed activities of one event day.
type DaySummary struct {
	Day            models.EventDay `json:"day"`
	PlannedMinutes int             `json:"planned_minutes"`
	ActualMinutes  int             `json:"actual_minutes"`
	DiffMinutes    int             `json:"diff_minutes"`
}

// ActivityInsight names a single noteworthy activity in the report.
type ActivityInsight struct {
	ActivityID  uint            `json:"activity_id"`
	Title       string          `json:"title"`
	Day         models.EventDay `json:"day"`
	DiffMinutes int             `json:"diff_minutes"`
}

// DayInsight names a single noteworthy event day in the report.
type DayInsight struct {
	Day           models.EventDay `json:"day"`
	OnTimePercent int             `json:"on_time_percent"`
}

// ReportSummary is the post-event punctuality report for one schedule
// variant across all days.
type ReportSummary struct {
	Variant             string           `json:"schedule_variant"`
	Total               int              `json:"total"`
	Completed           int              `json:"completed"`
	Skipped             int              `json:"skipped"`
	Pending             int              `json:"pending"`
	InProgress          int              `json:"in_progress"`
	PlannedTotalMinutes int              `json:"planned_total_minutes"`
	ActualTotalMinutes  int              `json:"actual_total_minutes"`
	OverallDiffMinutes  int              `json:"overall_diff_minutes"`
	PunctualityRate     int              `json:"punctuality_rate"`
	ByType              []TypeSummary    `json:"by_type"`
	ByDay               []DaySummary     `json:"by_day"`
	LargestOverrun      *ActivityInsight `json:"largest_overrun"`
	BestDay             *DayInsight      `json:"best_day"`
	GeneratedAt         time.Time        `json:"generated_at"`
	CacheHit            bool             `json:"cache_hit"`
}
