package dto

import (
	"time"

	"github.com/openevent/runsheet-api/internal/models"
)

// DriftVerdict is the reconciliation outcome between plan and execution.
type DriftVerdict string

const (
	DriftNone    DriftVerdict = "none"
	DriftOnTime  DriftVerdict = "on_time"
	DriftAhead   DriftVerdict = "ahead"
	DriftDelayed DriftVerdict = "delayed"
)

// DriftView reports how far execution is from the plan. Same-activity drift
// carries DeltaMinutes; cross-activity drift carries DeltaActivities. The two
// units are intentionally distinct and never both set.
type DriftView struct {
	Verdict         DriftVerdict `json:"verdict"`
	DeltaMinutes    *int         `json:"delta_minutes,omitempty"`
	DeltaActivities *int         `json:"delta_activities,omitempty"`
}

// TheoreticalView describes what the plan says should be running now.
type TheoreticalView struct {
	Activity         ActivityResponse `json:"activity"`
	CountdownSeconds *int64           `json:"countdown_seconds"`
	WindowExceeded   bool             `json:"window_exceeded"`
}

// RealView describes what is actually marked in progress now.
type RealView struct {
	Activity        ActivityResponse `json:"activity"`
	ElapsedSeconds  int64            `json:"elapsed_seconds"`
	ProgressPercent *float64         `json:"progress_percent"`
}

// TrackerSnapshot is the live view for one (day, schedule variant), built
// for short-interval polling.
type TrackerSnapshot struct {
	Day         models.EventDay   `json:"day"`
	Variant     string            `json:"schedule_variant"`
	Theoretical *TheoreticalView  `json:"theoretical"`
	Real        *RealView         `json:"real"`
	NextPending *ActivityResponse `json:"next_pending"`
	Drift       DriftView         `json:"drift"`
	GeneratedAt time.Time         `json:"generated_at"`
}
