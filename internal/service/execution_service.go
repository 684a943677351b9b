package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openevent/runsheet-api/internal/dto"
	"github.com/openevent/runsheet-api/internal/models"
	"github.com/openevent/runsheet-api/internal/repository"
)

// ExecutionService owns the per-activity state machine: start, complete and
// skip, each applied as a conditional write against the store.
type ExecutionService interface {
	Start(ctx context.Context, id uint, actor string) (dto.ActivityResponse, error)
	Complete(ctx context.Context, id uint, actor string) (dto.ActivityResponse, error)
	Skip(ctx context.Context, id uint, reason, actor string) (dto.ActivityResponse, error)
	Transitions(ctx context.Context, id uint) ([]dto.TransitionResponse, error)
}

type executionService struct {
	activities repository.ActivityRepository
	audit      repository.TransitionLogRepository
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewExecutionService constructs the state-machine service.
func NewExecutionService(activities repository.ActivityRepository, audit repository.TransitionLogRepository, logger zerolog.Logger) ExecutionService {
	return &executionService{
		activities: activities,
		audit:      audit,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "execution_service").Logger(),
		now:        time.Now,
	}
}

func (s *executionService) Start(ctx context.Context, id uint, actor string) (dto.ActivityResponse, error) {
	activity, err := s.fetch(ctx, id, "start")
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if activity.ExecutionStatus != models.StatusPending {
		return dto.ActivityResponse{}, &InvalidTransitionError{ActivityID: id, From: activity.ExecutionStatus, Operation: "start"}
	}

	running, err := s.activities.FindRunning(ctx, activity.Day, activity.ScheduleVariant)
	if err != nil {
		return dto.ActivityResponse{}, storeErr("start", err)
	}
	if running != nil && running.ID != id {
		return dto.ActivityResponse{}, &AlreadyRunningError{
			ActivityID:       id,
			ConflictingID:    running.ID,
			ConflictingTitle: running.Title,
		}
	}

	startedAt := s.now().UTC()
	ok, updated, err := s.activities.UpdateConditional(ctx, id, models.StatusPending, repository.ActivityPatch{
		Status:      models.StatusInProgress,
		ActualStart: &startedAt,
	})
	if err != nil {
		return dto.ActivityResponse{}, storeErr("start", err)
	}
	if !ok {
		return dto.ActivityResponse{}, s.conflict(ctx, id, models.StatusPending)
	}

	s.record(ctx, updated, models.StatusPending, actor, datatypes.JSONMap{
		"actual_start": startedAt.Format(time.RFC3339),
	})

	return dto.NewActivityResponse(updated), nil
}

func (s *executionService) Complete(ctx context.Context, id uint, actor string) (dto.ActivityResponse, error) {
	activity, err := s.fetch(ctx, id, "complete")
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if activity.ExecutionStatus != models.StatusInProgress || activity.ActualStart == nil {
		return dto.ActivityResponse{}, &InvalidTransitionError{ActivityID: id, From: activity.ExecutionStatus, Operation: "complete"}
	}

	endedAt := s.now().UTC()
	duration := int(math.Round(endedAt.Sub(*activity.ActualStart).Minutes()))
	ok, updated, err := s.activities.UpdateConditional(ctx, id, models.StatusInProgress, repository.ActivityPatch{
		Status:                models.StatusCompleted,
		ActualEnd:             &endedAt,
		ActualDurationMinutes: &duration,
	})
	if err != nil {
		return dto.ActivityResponse{}, storeErr("complete", err)
	}
	if !ok {
		return dto.ActivityResponse{}, s.conflict(ctx, id, models.StatusInProgress)
	}

	s.record(ctx, updated, models.StatusInProgress, actor, datatypes.JSONMap{
		"actual_end":              endedAt.Format(time.RFC3339),
		"actual_duration_minutes": duration,
	})

	return dto.NewActivityResponse(updated), nil
}

// Skip marks the activity skipped without writing any actual timestamps,
// even when it had already been started.
func (s *executionService) Skip(ctx context.Context, id uint, reason, actor string) (dto.ActivityResponse, error) {
	note := strings.TrimSpace(reason)
	if note == "" {
		return dto.ActivityResponse{}, &ValidationError{Reason: "reason required"}
	}
	note = strings.TrimSpace(s.sanitizer.Sanitize(note))
	if note == "" {
		return dto.ActivityResponse{}, &ValidationError{Reason: "reason required"}
	}

	activity, err := s.fetch(ctx, id, "skip")
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if activity.ExecutionStatus.Terminal() {
		return dto.ActivityResponse{}, &InvalidTransitionError{ActivityID: id, From: activity.ExecutionStatus, Operation: "skip"}
	}

	ok, updated, err := s.activities.UpdateConditional(ctx, id, activity.ExecutionStatus, repository.ActivityPatch{
		Status:   models.StatusSkipped,
		SkipNote: &note,
	})
	if err != nil {
		return dto.ActivityResponse{}, storeErr("skip", err)
	}
	if !ok {
		return dto.ActivityResponse{}, s.conflict(ctx, id, activity.ExecutionStatus)
	}

	s.record(ctx, updated, activity.ExecutionStatus, actor, datatypes.JSONMap{
		"skip_note": note,
	})

	return dto.NewActivityResponse(updated), nil
}

func (s *executionService) Transitions(ctx context.Context, id uint) ([]dto.TransitionResponse, error) {
	if _, err := s.fetch(ctx, id, "transitions"); err != nil {
		return nil, err
	}

	entries, err := s.audit.ListByActivity(ctx, id)
	if err != nil {
		return nil, storeErr("transitions", err)
	}

	responses := make([]dto.TransitionResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewTransitionResponse(entry))
	}
	return responses, nil
}

func (s *executionService) fetch(ctx context.Context, id uint, op string) (models.Activity, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Activity{}, ErrActivityNotFound
	}
	if err != nil {
		return models.Activity{}, storeErr(op, err)
	}
	return activity, nil
}

func (s *executionService) conflict(ctx context.Context, id uint, expected models.ExecutionStatus) error {
	conflictErr := &ConflictError{ActivityID: id, Expected: expected}
	refreshed, err := s.activities.GetByID(ctx, id)
	if err == nil {
		conflictErr.Found = refreshed.ExecutionStatus
	}
	return conflictErr
}

// record appends the audit entry; audit failures are logged, never surfaced,
// since the transition itself already landed.
func (s *executionService) record(ctx context.Context, activity models.Activity, from models.ExecutionStatus, actor string, metadata datatypes.JSONMap) {
	entry := models.TransitionLog{
		ActivityID: activity.ID,
		FromStatus: from,
		ToStatus:   activity.ExecutionStatus,
		Actor:      normalizeActor(actor),
		Metadata:   metadata,
	}
	if err := s.audit.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Uint("activity_id", activity.ID).Msg("failed to persist transition log")
	}
}

func normalizeActor(actor string) string {
	a := strings.TrimSpace(actor)
	if a == "" {
		return "system"
	}
	return a
}
