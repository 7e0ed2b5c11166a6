package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubmissionApproved   = "approved"
	SubmissionRejected   = "rejected"
	SubmissionOverridden = "overridden" // rejected by the scorer, approved by an admin
)

// Submission is the audit record of one proof attempt. TaskID is kept even
// after the task itself has been deleted on completion.
type Submission struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TaskID         uuid.UUID      `json:"taskId" gorm:"type:uuid;index;not null"`
	GoalID         uuid.UUID      `json:"goalId" gorm:"type:uuid;index;not null"`
	UserID         uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	TaskTitle      string         `json:"taskTitle"`
	TaskDifficulty string         `json:"taskDifficulty"`
	ProofType      string         `json:"proofType" gorm:"not null"`
	GithubRepo     *string        `json:"githubRepo"`
	GithubCommits  *string        `json:"githubCommits"`
	CoursePlatform *string        `json:"coursePlatform"`
	CourseProgress *string        `json:"courseProgress"`
	Description    *string        `json:"description" gorm:"type:text"`
	FileURL        *string        `json:"fileUrl"`
	Verified       bool           `json:"verified"`
	Confidence     int            `json:"confidence"`
	Feedback       string         `json:"feedback" gorm:"type:text"`
	Suggestions    *string        `json:"suggestions"` // JSON array
	Status         string         `json:"status" gorm:"not null"`
	RewardAmount   int64          `json:"rewardAmount" gorm:"default:0"`
	ReviewedAt     *time.Time     `json:"reviewedAt"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type SubmitProofRequest struct {
	Type           string `json:"type" validate:"required"`
	GithubRepo     string `json:"githubRepo"`
	GithubCommits  string `json:"githubCommits"`
	CoursePlatform string `json:"coursePlatform"`
	CourseProgress string `json:"courseProgress"`
	Description    string `json:"description"`
	FileURL        string `json:"fileUrl"`
}
