package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openevent/runsheet-api/internal/models"
)

// ActivityPatch carries the fields a state-machine transition may write.
// Status is always applied; pointer fields are applied only when non-nil.
type ActivityPatch struct {
	Status                models.ExecutionStatus
	ActualStart           *time.Time
	ActualEnd             *time.Time
	ActualDurationMinutes *int
	SkipNote              *string
}

func (p ActivityPatch) updates() map[string]interface{} {
	values := map[string]interface{}{"execution_status": p.Status}
	if p.ActualStart != nil {
		values["actual_start"] = *p.ActualStart
	}
	if p.ActualEnd != nil {
		values["actual_end"] = *p.ActualEnd
	}
	if p.ActualDurationMinutes != nil {
		values["actual_duration_minutes"] = *p.ActualDurationMinutes
	}
	if p.SkipNote != nil {
		values["skip_note"] = *p.SkipNote
	}
	return values
}

// ActivityRepository defines the store contract the execution core consumes.
type ActivityRepository interface {
	ListByDayAndVariant(ctx context.Context, day models.EventDay, variant string) ([]models.Activity, error)
	ListAll(ctx context.Context, variant string) ([]models.Activity, error)
	GetByID(ctx context.Context, id uint) (models.Activity, error)
	FindRunning(ctx context.Context, day models.EventDay, variant string) (*models.Activity, error)
	UpdateConditional(ctx context.Context, id uint, expected models.ExecutionStatus, patch ActivityPatch) (bool, models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository instantiates a GORM-backed repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) ListByDayAndVariant(ctx context.Context, day models.EventDay, variant string) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("day = ? AND schedule_variant = ?", day, variant).
		Order("position ASC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}

	return activities, nil
}

func (r *activityRepository) ListAll(ctx context.Context, variant string) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("schedule_variant = ?", variant).
		Order("day ASC, position ASC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}

	return activities, nil
}

func (r *activityRepository) GetByID(ctx context.Context, id uint) (models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		return models.Activity{}, err
	}

	return activity, nil
}

func (r *activityRepository) FindRunning(ctx context.Context, day models.EventDay, variant string) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).
		Where("day = ? AND schedule_variant = ? AND execution_status = ?", day, variant, models.StatusInProgress).
		Order("position ASC").
		First(&activity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &activity, nil
}

// UpdateConditional applies the patch only while the stored status still
// matches expected. ok=false with a nil error means the compare-and-swap lost
// the race (or the row is gone); the caller decides how to surface that.
func (r *activityRepository) UpdateConditional(ctx context.Context, id uint, expected models.ExecutionStatus, patch ActivityPatch) (bool, models.Activity, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ? AND execution_status = ?", id, expected).
		Updates(patch.updates())
	if result.Error != nil {
		return false, models.Activity{}, result.Error
	}
	if result.RowsAffected == 0 {
		return false, models.Activity{}, nil
	}

	var updated models.Activity
	if err := r.db.WithContext(ctx).First(&updated, id).Error; err != nil {
		return false, models.Activity{}, err
	}

	return true, updated, nil
}
