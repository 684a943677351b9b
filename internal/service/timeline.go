package service

import (
	"math"
	"time"

	"github.com/openevent/runsheet-api/internal/dto"
	"github.com/openevent/runsheet-api/internal/models"
)

// Scheduled times are clock values without a date. Live computations anchor
// them to the calendar date of "now" in the event timezone; a window whose
// end does not follow its start is taken to cross midnight.

func parseClock(value string) (hour, minute int, ok bool) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, false
	}
	return parsed.Hour(), parsed.Minute(), true
}

func anchorClock(value string, now time.Time, loc *time.Location) (time.Time, bool) {
	hour, minute, ok := parseClock(value)
	if !ok {
		return time.Time{}, false
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc), true
}

func scheduledWindow(activity models.Activity, now time.Time, loc *time.Location) (start, end time.Time, ok bool) {
	if activity.ScheduledStart == nil || activity.ScheduledEnd == nil {
		return time.Time{}, time.Time{}, false
	}
	start, ok = anchorClock(*activity.ScheduledStart, now, loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok = anchorClock(*activity.ScheduledEnd, now, loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end, true
}

// theoreticalCurrent picks the activity the plan says should be running:
// the first whose window contains now, else the most recently due one, else
// the first activity in order. Nil only for an empty schedule.
func theoreticalCurrent(activities []models.Activity, now time.Time, loc *time.Location) *models.Activity {
	if len(activities) == 0 {
		return nil
	}

	for i := range activities {
		start, end, ok := scheduledWindow(activities[i], now, loc)
		if ok && !now.Before(start) && now.Before(end) {
			return &activities[i]
		}
	}

	var due *models.Activity
	for i := range activities {
		_, end, ok := scheduledWindow(activities[i], now, loc)
		if ok && !end.After(now) {
			due = &activities[i]
		}
	}
	if due != nil {
		return due
	}

	return &activities[0]
}

// realCurrent returns the activity marked in progress, nil when none is.
func realCurrent(activities []models.Activity) *models.Activity {
	for i := range activities {
		if activities[i].ExecutionStatus == models.StatusInProgress {
			return &activities[i]
		}
	}
	return nil
}

// nextPending returns the activity after the running one regardless of its
// status, or the first pending activity when nothing is running.
func nextPending(activities []models.Activity, running *models.Activity) *models.Activity {
	if running != nil {
		for i := range activities {
			if activities[i].ID == running.ID {
				if i+1 < len(activities) {
					return &activities[i+1]
				}
				return nil
			}
		}
		return nil
	}

	for i := range activities {
		if activities[i].ExecutionStatus == models.StatusPending {
			return &activities[i]
		}
	}
	return nil
}

func orderIndex(activities []models.Activity, target *models.Activity) int {
	for i := range activities {
		if activities[i].ID == target.ID {
			return i
		}
	}
	return -1
}

// compareDrift reconciles the theoretical and real currents. Same-activity
// drift is measured in start-time minutes against the tolerance;
// cross-activity drift is measured in activity counts. The unit asymmetry is
// deliberate and part of the contract.
func compareDrift(activities []models.Activity, theoretical, real *models.Activity, now time.Time, loc *time.Location, toleranceMinutes int) dto.DriftView {
	if theoretical == nil || real == nil {
		return dto.DriftView{Verdict: dto.DriftNone}
	}

	if theoretical.ID == real.ID {
		if real.ActualStart == nil || real.ScheduledStart == nil {
			return dto.DriftView{Verdict: dto.DriftNone}
		}
		plannedStart, ok := anchorClock(*real.ScheduledStart, now, loc)
		if !ok {
			return dto.DriftView{Verdict: dto.DriftNone}
		}

		delta := int(math.Round(real.ActualStart.Sub(plannedStart).Minutes()))
		switch {
		case delta > -toleranceMinutes && delta < toleranceMinutes:
			return dto.DriftView{Verdict: dto.DriftOnTime}
		case delta < 0:
			minutes := -delta
			return dto.DriftView{Verdict: dto.DriftAhead, DeltaMinutes: &minutes}
		default:
			minutes := delta
			return dto.DriftView{Verdict: dto.DriftDelayed, DeltaMinutes: &minutes}
		}
	}

	theoreticalIdx := orderIndex(activities, theoretical)
	realIdx := orderIndex(activities, real)
	if theoreticalIdx < 0 || realIdx < 0 {
		return dto.DriftView{Verdict: dto.DriftNone}
	}

	if realIdx > theoreticalIdx {
		return dto.DriftView{Verdict: dto.DriftAhead}
	}

	count := theoreticalIdx - realIdx
	return dto.DriftView{Verdict: dto.DriftDelayed, DeltaActivities: &count}
}
