package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	TaskSourceManual = "manual"
	TaskSourceAI     = "ai"
)

// Task is an open unit of work under a goal. Tasks are deleted once their
// proof has been verified and the reward credited.
type Task struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID       uuid.UUID      `json:"goalId" gorm:"type:uuid;index;not null"`
	Title        string         `json:"title" gorm:"not null"`
	Description  *string        `json:"description"`
	Difficulty   string         `json:"difficulty" gorm:"not null;default:'medium'"` // easy, medium, hard
	RewardAmount int64          `json:"rewardAmount" gorm:"not null;default:0"`
	Completed    bool           `json:"completed" gorm:"default:false"`
	Source       string         `json:"source" gorm:"not null;default:'manual'"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ValidDifficulty reports whether d is one of the known difficulty levels.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Task DTOs
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Difficulty  string  `json:"difficulty"`
}

type GenerateTasksRequest struct {
	Tasks []CreateTaskRequest `json:"tasks" validate:"required"`
}
