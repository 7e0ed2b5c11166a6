package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types.
const (
	NotifyTaskAdded          = "task_added"
	NotifyTasksGenerated     = "tasks_generated"
	NotifyTaskDeleted        = "task_deleted"
	NotifyTasksCleared       = "tasks_cleared"
	NotifyProofVerified      = "proof_verified"
	NotifyProofRejected      = "proof_rejected"
	NotifyMilestoneAchieved  = "milestone_achieved"
	NotifyPaymentReviewed    = "payment_reviewed"
	NotifyWithdrawalReviewed = "withdrawal_reviewed"
	NotifyGoalSettled        = "goal_settled"
)

type Notification struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	Type      string         `json:"type" gorm:"not null"`
	Title     string         `json:"title" gorm:"not null"`
	Body      string         `json:"body"`
	Read      bool           `json:"read" gorm:"default:false"`
	Metadata  *string        `json:"metadata"` // JSON string for navigation context (goalId, taskId, etc.)
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
