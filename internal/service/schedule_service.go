package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/openevent/runsheet-api/internal/dto"
	"github.com/openevent/runsheet-api/internal/models"
	"github.com/openevent/runsheet-api/internal/repository"
)

// ScheduleService exposes read-only views of the runsheet. Authoring lives
// outside this service.
type ScheduleService interface {
	List(ctx context.Context, day models.EventDay, variant string) ([]dto.ActivityResponse, error)
	Get(ctx context.Context, id uint) (dto.ActivityResponse, error)
}

type scheduleService struct {
	activities repository.ActivityRepository
	logger     zerolog.Logger
}

// NewScheduleService constructs the schedule read service.
func NewScheduleService(activities repository.ActivityRepository, logger zerolog.Logger) ScheduleService {
	return &scheduleService{
		activities: activities,
		logger:     logger.With().Str("component", "schedule_service").Logger(),
	}
}

func (s *scheduleService) List(ctx context.Context, day models.EventDay, variant string) ([]dto.ActivityResponse, error) {
	activities, err := s.activities.ListByDayAndVariant(ctx, day, variant)
	if err != nil {
		return nil, storeErr("schedule list", err)
	}

	responses := make([]dto.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		responses = append(responses, dto.NewActivityResponse(activity))
	}
	return responses, nil
}

func (s *scheduleService) Get(ctx context.Context, id uint) (dto.ActivityResponse, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ActivityResponse{}, ErrActivityNotFound
	}
	if err != nil {
		return dto.ActivityResponse{}, storeErr("schedule get", err)
	}

	return dto.NewActivityResponse(activity), nil
}
