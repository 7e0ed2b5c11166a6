package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arnold/stakegoals-api/internal/database"
	"github.com/arnold/stakegoals-api/internal/lifecycle"
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errReviewed = errors.New("already reviewed")

// SubmitPayment records the user's evidence that the commitment was paid.
// The goal stays inactive until an admin approves it.
func SubmitPayment(c *fiber.Ctx) error {
	goalID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}
	goal, err := ownedGoal(c, goalID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}
	if goal.Status != models.GoalInactive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Goal already active",
			"message": fmt.Sprintf("goal is %s", goal.Status),
		})
	}

	var req models.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Amount <= 0 {
		return badRequest(c, "Amount must be positive")
	}
	if req.Amount != goal.CommitmentAmount {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Amount mismatch",
			"message": fmt.Sprintf("payment must match the commitment of %d", goal.CommitmentAmount),
		})
	}

	var pending int64
	err = database.DB.Model(&models.PaymentSubmission{}).
		Where("goal_id = ? AND status = ?", goalID, models.ReviewPending).
		Count(&pending).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check pending payments",
		})
	}
	if pending > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Payment pending",
			"message": "a payment for this goal is already awaiting review",
		})
	}

	payment := models.PaymentSubmission{
		GoalID:     goalID,
		UserID:     goal.UserID,
		Amount:     req.Amount,
		Reference:  strings.TrimSpace(req.Reference),
		ReceiptURL: req.ReceiptURL,
		Status:     models.ReviewPending,
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit payment",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

func ListPayments(c *fiber.Ctx) error {
	var payments []models.PaymentSubmission
	err := database.DB.Where("status = ?", c.Query("status", models.ReviewPending)).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}
	return c.JSON(payments)
}

func ApprovePayment(c *fiber.Ctx) error {
	return reviewPayment(c, true)
}

func RejectPayment(c *fiber.Ctx) error {
	return reviewPayment(c, false)
}

// reviewPayment settles a pending payment. Approval activates the goal in the
// same transaction.
func reviewPayment(c *fiber.Ctx, approve bool) error {
	paymentID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid payment ID")
	}
	var req models.ReviewRequest
	if err := reviewNote(c, &req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var payment models.PaymentSubmission
	var goal models.Goal
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, "id = ?", paymentID).Error; err != nil {
			return err
		}
		if payment.Status != models.ReviewPending {
			return errReviewed
		}
		now := time.Now()
		payment.ReviewedAt = &now
		payment.Note = req.Note
		payment.Status = models.ReviewRejected
		if approve {
			payment.Status = models.ReviewApproved
		}
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		if err := tx.First(&goal, "id = ?", payment.GoalID).Error; err != nil {
			return err
		}
		if approve && goal.Status == models.GoalInactive {
			goal.Status = models.GoalActive
			return tx.Save(&goal).Error
		}
		return nil
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment not found",
		})
	case errors.Is(err, errReviewed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Already reviewed",
			"message": fmt.Sprintf("payment is %s", payment.Status),
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to review payment",
		})
	}

	title, body := "Payment rejected", fmt.Sprintf("Your payment for %q was not accepted.", goal.Title)
	if approve {
		title, body = "Payment approved", fmt.Sprintf("Your stake of %d is confirmed. %q is now active.", payment.Amount, goal.Title)
	}
	if payment.Note != nil && *payment.Note != "" {
		body += " " + *payment.Note
	}
	Notices.Notify(c.UserContext(), lifecycle.Notice{
		UserID:   payment.UserID,
		GoalID:   goal.ID,
		Type:     models.NotifyPaymentReviewed,
		Title:    title,
		Body:     body,
		Metadata: map[string]interface{}{"goalId": goal.ID.String(), "paymentId": payment.ID.String(), "status": payment.Status},
	})

	return c.JSON(fiber.Map{
		"payment": payment,
		"goal":    goal,
	})
}
