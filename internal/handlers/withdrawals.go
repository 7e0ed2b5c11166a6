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
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errInsufficient = errors.New("insufficient balance")

// available is what can still be withdrawn from a goal: current earnings
// minus everything approved or awaiting review.
func available(tx *gorm.DB, goal *models.Goal) (int64, error) {
	var held int64
	err := tx.Model(&models.WithdrawalRequest{}).
		Where("goal_id = ? AND status IN ?", goal.ID, []string{models.ReviewPending, models.ReviewApproved}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&held).Error
	if err != nil {
		return 0, err
	}
	return goal.CurrentAmount - held, nil
}

// lockedGoal re-reads a goal inside tx. Postgres takes a row lock so
// concurrent withdrawals from other processes queue behind this one.
func lockedGoal(tx *gorm.DB, goalID uuid.UUID) (*models.Goal, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var goal models.Goal
	if err := q.First(&goal, "id = ?", goalID).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

func RequestWithdrawal(c *fiber.Ctx) error {
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

	var req models.CreateWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Amount <= 0 {
		return badRequest(c, "Amount must be positive")
	}
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" {
		return badRequest(c, "Destination is required")
	}

	w := models.WithdrawalRequest{
		GoalID:      goalID,
		UserID:      goal.UserID,
		Amount:      req.Amount,
		Destination: req.Destination,
		Status:      models.ReviewPending,
	}
	// the coordinator's goal lock also covers ClearTasks, which zeroes earnings
	unlock := Lifecycle.LockGoal(goalID)
	defer unlock()

	var avail int64
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		current, err := lockedGoal(tx, goalID)
		if err != nil {
			return err
		}
		if avail, err = available(tx, current); err != nil {
			return err
		}
		if req.Amount > avail {
			return errInsufficient
		}
		return tx.Create(&w).Error
	})
	if errors.Is(err, errInsufficient) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Insufficient balance",
			"message": fmt.Sprintf("only %d is available to withdraw", avail),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to request withdrawal",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

func ListWithdrawals(c *fiber.Ctx) error {
	var requests []models.WithdrawalRequest
	err := database.DB.Where("status = ?", c.Query("status", models.ReviewPending)).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch withdrawals",
		})
	}
	return c.JSON(requests)
}

func ApproveWithdrawal(c *fiber.Ctx) error {
	return reviewWithdrawal(c, true)
}

func RejectWithdrawal(c *fiber.Ctx) error {
	return reviewWithdrawal(c, false)
}

// reviewWithdrawal settles a pending request. Approval writes a ledger entry;
// the goal's current amount is left as is.
func reviewWithdrawal(c *fiber.Ctx, approve bool) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid withdrawal ID")
	}
	var req models.ReviewRequest
	if err := reviewNote(c, &req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var w models.WithdrawalRequest
	var goal models.Goal
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&w, "id = ?", id).Error; err != nil {
			return err
		}
		if w.Status != models.ReviewPending {
			return errReviewed
		}
		if err := tx.First(&goal, "id = ?", w.GoalID).Error; err != nil {
			return err
		}
		now := time.Now()
		w.ReviewedAt = &now
		w.Note = req.Note
		w.Status = models.ReviewRejected
		if approve {
			w.Status = models.ReviewApproved
		}
		if err := tx.Save(&w).Error; err != nil {
			return err
		}
		if !approve {
			return nil
		}
		balance, err := available(tx, &goal)
		if err != nil {
			return err
		}
		target := w.ID
		return tx.Create(&models.LedgerEntry{
			GoalID:   goal.ID,
			UserID:   w.UserID,
			Type:     models.LedgerWithdrawal,
			Amount:   -w.Amount,
			Balance:  balance,
			TargetID: &target,
		}).Error
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Withdrawal not found",
		})
	case errors.Is(err, errReviewed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Already reviewed",
			"message": fmt.Sprintf("withdrawal is %s", w.Status),
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to review withdrawal",
		})
	}

	title, body := "Withdrawal rejected", fmt.Sprintf("Your withdrawal of %d was not approved.", w.Amount)
	if approve {
		title, body = "Withdrawal approved", fmt.Sprintf("%d is on its way to %s.", w.Amount, w.Destination)
	}
	Notices.Notify(c.UserContext(), lifecycle.Notice{
		UserID:   w.UserID,
		GoalID:   goal.ID,
		Type:     models.NotifyWithdrawalReviewed,
		Title:    title,
		Body:     body,
		Metadata: map[string]interface{}{"goalId": goal.ID.String(), "withdrawalId": w.ID.String(), "status": w.Status},
	})
	return c.JSON(w)
}
