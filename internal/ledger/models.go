package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Award is one eco-points credit for a verified submission.
type Award struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	TaskType  string    `json:"task_type" gorm:"not null"`
	Points    int       `json:"points" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Award) TableName() string { return "eco_point_awards" }
