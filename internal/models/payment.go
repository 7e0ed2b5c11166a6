package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review statuses shared by payment submissions and withdrawal requests.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// PaymentSubmission is the user's evidence that the commitment stake was paid.
type PaymentSubmission struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID     uuid.UUID      `json:"goalId" gorm:"type:uuid;index;not null"`
	UserID     uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	Amount     int64          `json:"amount" gorm:"not null"`
	Reference  string         `json:"reference"`
	ReceiptURL *string        `json:"receiptUrl"`
	Status     string         `json:"status" gorm:"not null;default:'pending'"`
	Note       *string        `json:"note"`
	ReviewedAt *time.Time     `json:"reviewedAt"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *PaymentSubmission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type CreatePaymentRequest struct {
	Amount     int64   `json:"amount" validate:"required"`
	Reference  string  `json:"reference"`
	ReceiptURL *string `json:"receiptUrl"`
}

// WithdrawalRequest asks an admin to pay out confirmed earnings.
type WithdrawalRequest struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID      uuid.UUID      `json:"goalId" gorm:"type:uuid;index;not null"`
	UserID      uuid.UUID      `json:"userId" gorm:"type:uuid;index;not null"`
	Amount      int64          `json:"amount" gorm:"not null"`
	Destination string         `json:"destination"`
	Status      string         `json:"status" gorm:"not null;default:'pending'"`
	Note        *string        `json:"note"`
	ReviewedAt  *time.Time     `json:"reviewedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (w *WithdrawalRequest) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type CreateWithdrawalRequest struct {
	Amount      int64  `json:"amount" validate:"required"`
	Destination string `json:"destination"`
}

type ReviewRequest struct {
	Note *string `json:"note"`
}
