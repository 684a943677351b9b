package dto

import (
	"time"

	"github.com/openevent/runsheet-api/internal/models"
)

// ActivityResponse is the API view of one runsheet entry.
type ActivityResponse struct {
	ID                     uint                   `json:"id"`
	Day                    models.EventDay        `json:"day"`
	ScheduleVariant        string                 `json:"schedule_variant"`
	Position               int                    `json:"position"`
	Type                   string                 `json:"type"`
	Title                  string                 `json:"title"`
	Location               string                 `json:"location"`
	Team                   string                 `json:"team"`
	ResponsibleName        string                 `json:"responsible_name"`
	ScheduledStart         *string                `json:"scheduled_start"`
	ScheduledEnd           *string                `json:"scheduled_end"`
	PlannedDurationMinutes *int                   `json:"planned_duration_minutes"`
	ExecutionStatus        models.ExecutionStatus `json:"execution_status"`
	ActualStart            *time.Time             `json:"actual_start"`
	ActualEnd              *time.Time             `json:"actual_end"`
	ActualDurationMinutes  *int                   `json:"actual_duration_minutes"`
	SkipNote               string                 `json:"skip_note,omitempty"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// NewActivityResponse maps a stored activity to its API representation.
func NewActivityResponse(activity models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:                     activity.ID,
		Day:                    activity.Day,
		ScheduleVariant:        activity.ScheduleVariant,
		Position:               activity.Position,
		Type:                   activity.Type,
		Title:                  activity.Title,
		Location:               activity.Location,
		Team:                   activity.Team,
		ResponsibleName:        activity.ResponsibleName,
		ScheduledStart:         activity.ScheduledStart,
		ScheduledEnd:           activity.ScheduledEnd,
		PlannedDurationMinutes: activity.PlannedDurationMinutes,
		ExecutionStatus:        activity.ExecutionStatus,
		ActualStart:            activity.ActualStart,
		ActualEnd:              activity.ActualEnd,
		ActualDurationMinutes:  activity.ActualDurationMinutes,
		SkipNote:               activity.SkipNote,
		UpdatedAt:              activity.UpdatedAt,
	}
}

// TransitionResponse is the API view of one audit-trail entry.
type TransitionResponse struct {
	ID         uint                   `json:"id"`
	ActivityID uint                   `json:"activity_id"`
	FromStatus models.ExecutionStatus `json:"from_status"`
	ToStatus   models.ExecutionStatus `json:"to_status"`
	Actor      string                 `json:"actor"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewTransitionResponse maps an audit entry to its API representation.
func NewTransitionResponse(entry models.TransitionLog) TransitionResponse {
	return TransitionResponse{
		ID:         entry.ID,
		ActivityID: entry.ActivityID,
		FromStatus: entry.FromStatus,
		ToStatus:   entry.ToStatus,
		Actor:      entry.Actor,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// SkipRequest carries the coordinator-supplied skip reason.
type SkipRequest struct {
	Reason string `json:"reason" validate:"required"`
	Actor  string `json:"actor"`
}

// TransitionRequest carries the optional actor label for start/complete.
type TransitionRequest struct {
	Actor string `json:"actor"`
}
