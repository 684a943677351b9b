package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransitionLog records one applied state-machine transition for auditing.
type TransitionLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActivityID uint              `gorm:"not null;index" json:"activity_id"`
	FromStatus ExecutionStatus   `gorm:"size:16;not null" json:"from_status"`
	ToStatus   ExecutionStatus   `gorm:"size:16;not null" json:"to_status"`
	Actor      string            `gorm:"size:128" json:"actor"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
