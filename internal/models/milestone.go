package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Milestone records a progress threshold (25, 50, 75, 100) for a goal.
// Achieved never flips back to false except when the goal is reset.
type Milestone struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID       uuid.UUID  `json:"goalId" gorm:"type:uuid;not null;uniqueIndex:idx_goal_threshold"`
	Threshold    int        `json:"threshold" gorm:"not null;uniqueIndex:idx_goal_threshold"`
	RewardAmount int64      `json:"rewardAmount" gorm:"not null;default:0"`
	Achieved     bool       `json:"achieved" gorm:"default:false"`
	AchievedAt   *time.Time `json:"achievedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
