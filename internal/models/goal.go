package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Goal statuses. A goal is created inactive and becomes active once its
// commitment payment has been approved.
const (
	GoalInactive  = "inactive"
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalFailed    = "failed"
)

type Goal struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	Title            string         `json:"title" gorm:"not null"`
	Description      *string        `json:"description"`
	TargetAmount     *int64         `json:"targetAmount"`
	CurrentAmount    int64          `json:"currentAmount" gorm:"not null;default:0"`
	RewardsPaid      int64          `json:"rewardsPaid" gorm:"not null;default:0"` // task rewards credited so far
	CommitmentAmount int64          `json:"commitmentAmount" gorm:"not null"`
	Deadline         *time.Time     `json:"deadline"`
	Status           string         `json:"status" gorm:"not null;default:'inactive'"` // inactive, active, completed, failed
	CompletedAt      *time.Time     `json:"completedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
	Tasks            []Task         `json:"tasks,omitempty" gorm:"foreignKey:GoalID"`
	Milestones       []Milestone    `json:"milestones,omitempty" gorm:"foreignKey:GoalID"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Target returns the milestone target, or zero when none is set.
func (g *Goal) Target() int64 {
	if g.TargetAmount == nil {
		return 0
	}
	return *g.TargetAmount
}

// Goal DTOs
type CreateGoalRequest struct {
	Title            string     `json:"title" validate:"required"`
	Description      *string    `json:"description"`
	TargetAmount     *int64     `json:"targetAmount"`
	CommitmentAmount int64      `json:"commitmentAmount" validate:"required"`
	Deadline         *time.Time `json:"deadline"`
}

type GoalSummary struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Status           string     `json:"status"`
	CommitmentAmount int64      `json:"commitmentAmount"`
	CurrentAmount    int64      `json:"currentAmount"`
	TargetAmount     *int64     `json:"targetAmount"`
	Deadline         *time.Time `json:"deadline"`
	TaskCount        int        `json:"taskCount"`
}
