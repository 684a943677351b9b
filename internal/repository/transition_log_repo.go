package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/openevent/runsheet-api/internal/models"
)

// TransitionLogRepository persists and queries the transition audit trail.
type TransitionLogRepository interface {
	Create(ctx context.Context, entry *models.TransitionLog) error
	ListByActivity(ctx context.Context, activityID uint) ([]models.TransitionLog, error)
}

type transitionLogRepository struct {
	db *gorm.DB
}

// NewTransitionLogRepository instantiates a GORM-backed repository.
func NewTransitionLogRepository(db *gorm.DB) TransitionLogRepository {
	return &transitionLogRepository{db: db}
}

func (r *transitionLogRepository) Create(ctx context.Context, entry *models.TransitionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *transitionLogRepository) ListByActivity(ctx context.Context, activityID uint) ([]models.TransitionLog, error) {
	var entries []models.TransitionLog
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
