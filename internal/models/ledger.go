package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger entry types.
const (
	LedgerRewardCredit   = "reward_credit"
	LedgerMilestoneBonus = "milestone_bonus"
	LedgerReset          = "reset"
	LedgerWithdrawal     = "withdrawal"
)

// LedgerEntry is an append-only record of a financial state change on a goal.
// Entries are written in the same transaction as the change they describe.
type LedgerEntry struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID    uuid.UUID  `json:"goalId" gorm:"type:uuid;index;not null"`
	UserID    uuid.UUID  `json:"userId" gorm:"type:uuid;not null"`
	Type      string     `json:"type" gorm:"not null"` // reward_credit, milestone_bonus, reset, withdrawal
	Amount    int64      `json:"amount" gorm:"not null"`
	Balance   int64      `json:"balance"`               // goal current amount after the change
	TargetID  *uuid.UUID `json:"targetId" gorm:"type:uuid"` // task, milestone or withdrawal ID
	Metadata  *string    `json:"metadata"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (l *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
