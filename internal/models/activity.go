package models

import "time"

// EventDay identifies one of the four fixed event days.
type EventDay string

const (
	EventDayD1 EventDay = "D1"
	EventDayD2 EventDay = "D2"
	EventDayD3 EventDay = "D3"
	EventDayD4 EventDay = "D4"
)

// EventDays returns the event days in calendar order.
func EventDays() []EventDay {
	return []EventDay{EventDayD1, EventDayD2, EventDayD3, EventDayD4}
}

// Valid reports whether the value is one of the known event days.
func (d EventDay) Valid() bool {
	switch d {
	case EventDayD1, EventDayD2, EventDayD3, EventDayD4:
		return true
	default:
		return false
	}
}

// Index returns the zero-based position of the day in calendar order, or -1.
func (d EventDay) Index() int {
	for i, day := range EventDays() {
		if day == d {
			return i
		}
	}
	return -1
}

// ExecutionStatus tracks where an activity sits in its execution lifecycle.
type ExecutionStatus string

const (
	StatusPending    ExecutionStatus = "pending"
	StatusInProgress ExecutionStatus = "in_progress"
	StatusCompleted  ExecutionStatus = "completed"
	StatusSkipped    ExecutionStatus = "skipped"
)

// Valid reports whether the value is a known execution status.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition can leave this status.
func (s ExecutionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// Activity is one entry of a day's runsheet. Planned timing comes from the
// authoring side and is immutable here; actual timing is written only by the
// execution state machine.
type Activity struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	Day             EventDay `gorm:"size:8;not null;uniqueIndex:idx_schedule_slot,priority:1" json:"day"`
	ScheduleVariant string   `gorm:"size:64;not null;uniqueIndex:idx_schedule_slot,priority:2" json:"schedule_variant"`
	Position        int      `gorm:"not null;uniqueIndex:idx_schedule_slot,priority:3" json:"position"`
	Type            string   `gorm:"size:64" json:"type"`
	Title           string   `gorm:"size:255;not null" json:"title"`
	Location        string   `gorm:"size:255" json:"location"`
	Team            string   `gorm:"size:128" json:"team"`
	ResponsibleName string   `gorm:"size:128" json:"responsible_name"`

	// Scheduled times are clock values ("15:04"), no date component.
	ScheduledStart         *string `gorm:"size:5" json:"scheduled_start"`
	ScheduledEnd           *string `gorm:"size:5" json:"scheduled_end"`
	PlannedDurationMinutes *int    `json:"planned_duration_minutes"`

	ExecutionStatus       ExecutionStatus `gorm:"size:16;not null;default:pending;index" json:"execution_status"`
	ActualStart           *time.Time      `json:"actual_start"`
	ActualEnd             *time.Time      `json:"actual_end"`
	ActualDurationMinutes *int            `json:"actual_duration_minutes"`
	SkipNote              string          `gorm:"type:text" json:"skip_note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DurationDiffMinutes returns actual minus planned minutes for a completed
// activity, or false when either figure is missing.
func (a Activity) DurationDiffMinutes() (int, bool) {
	if a.ExecutionStatus != StatusCompleted || a.ActualDurationMinutes == nil || a.PlannedDurationMinutes == nil {
		return 0, false
	}
	return *a.ActualDurationMinutes - *a.PlannedDurationMinutes, true
}
