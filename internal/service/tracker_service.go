package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/openevent/runsheet-api/internal/dto"
	"github.com/openevent/runsheet-api/internal/models"
	"github.com/openevent/runsheet-api/internal/repository"
)

// TrackerService produces the live reconciliation view for one day of one
// schedule variant. It is a pure read over the store's current snapshot;
// dashboards poll it on a short interval and tolerate one interval of
// staleness.
type TrackerService interface {
	Snapshot(ctx context.Context, day models.EventDay, variant string) (dto.TrackerSnapshot, error)
}

type trackerService struct {
	activities       repository.ActivityRepository
	location         *time.Location
	toleranceMinutes int
	logger           zerolog.Logger
	now              func() time.Time
}

// NewTrackerService constructs the live tracker. toleranceMinutes is the
// live on-time band for same-activity drift; it is tuned independently of
// the report tolerance.
func NewTrackerService(activities repository.ActivityRepository, location *time.Location, toleranceMinutes int, logger zerolog.Logger) TrackerService {
	if location == nil {
		location = time.UTC
	}
	return &trackerService{
		activities:       activities,
		location:         location,
		toleranceMinutes: toleranceMinutes,
		logger:           logger.With().Str("component", "tracker_service").Logger(),
		now:              time.Now,
	}
}

func (s *trackerService) Snapshot(ctx context.Context, day models.EventDay, variant string) (dto.TrackerSnapshot, error) {
	activities, err := s.activities.ListByDayAndVariant(ctx, day, variant)
	if err != nil {
		return dto.TrackerSnapshot{}, storeErr("tracker snapshot", err)
	}

	now := s.now()
	theoretical := theoreticalCurrent(activities, now, s.location)
	real := realCurrent(activities)
	next := nextPending(activities, real)

	snapshot := dto.TrackerSnapshot{
		Day:         day,
		Variant:     variant,
		Drift:       compareDrift(activities, theoretical, real, now, s.location, s.toleranceMinutes),
		GeneratedAt: now.UTC(),
	}

	if theoretical != nil {
		view := dto.TheoreticalView{Activity: dto.NewActivityResponse(*theoretical)}
		if _, end, ok := scheduledWindow(*theoretical, now, s.location); ok {
			remaining := int64(end.Sub(now).Seconds())
			view.CountdownSeconds = &remaining
			view.WindowExceeded = remaining < 0
		}
		snapshot.Theoretical = &view
	}

	if real != nil && real.ActualStart != nil {
		view := dto.RealView{
			Activity:       dto.NewActivityResponse(*real),
			ElapsedSeconds: int64(now.Sub(*real.ActualStart).Seconds()),
		}
		if real.PlannedDurationMinutes != nil && *real.PlannedDurationMinutes > 0 {
			progress := float64(view.ElapsedSeconds) / (float64(*real.PlannedDurationMinutes) * 60) * 100
			view.ProgressPercent = &progress
		}
		snapshot.Real = &view
	}

	if next != nil {
		response := dto.NewActivityResponse(*next)
		snapshot.NextPending = &response
	}

	return snapshot, nil
}
