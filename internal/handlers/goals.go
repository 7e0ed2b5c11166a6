package handlers

import (
	"strings"
	"time"

	"github.com/arnold/stakegoals-api/internal/database"
	"github.com/arnold/stakegoals-api/internal/middleware"
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func CreateGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return badRequest(c, "Title is required")
	}
	if req.CommitmentAmount <= 0 {
		return badRequest(c, "Commitment amount must be positive")
	}
	if req.TargetAmount != nil && *req.TargetAmount <= 0 {
		return badRequest(c, "Target amount must be positive")
	}
	if req.Deadline != nil && !req.Deadline.After(time.Now()) {
		return badRequest(c, "Deadline must be in the future")
	}

	// Without an explicit target, milestones track earnings against the stake
	target := req.TargetAmount
	if target == nil {
		t := req.CommitmentAmount
		target = &t
	}

	ensureUser(c)
	goal := models.Goal{
		UserID:           userID,
		Title:            req.Title,
		Description:      req.Description,
		TargetAmount:     target,
		CommitmentAmount: req.CommitmentAmount,
		Deadline:         req.Deadline,
		Status:           models.GoalInactive,
	}
	if err := database.DB.Create(&goal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create goal",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(goal)
}

func GetGoals(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var goals []models.Goal
	query := database.DB.Where("user_id = ?", userID).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&goals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch goals",
		})
	}

	ids := make([]uuid.UUID, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	var counts []struct {
		GoalID uuid.UUID
		Count  int
	}
	if len(ids) > 0 {
		err := database.DB.Model(&models.Task{}).
			Select("goal_id, count(*) as count").
			Where("goal_id IN ?", ids).
			Group("goal_id").
			Scan(&counts).Error
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to count tasks",
			})
		}
	}
	taskCount := make(map[uuid.UUID]int, len(counts))
	for _, row := range counts {
		taskCount[row.GoalID] = row.Count
	}

	summaries := make([]models.GoalSummary, len(goals))
	for i, g := range goals {
		summaries[i] = models.GoalSummary{
			ID:               g.ID,
			Title:            g.Title,
			Status:           g.Status,
			CommitmentAmount: g.CommitmentAmount,
			CurrentAmount:    g.CurrentAmount,
			TargetAmount:     g.TargetAmount,
			Deadline:         g.Deadline,
			TaskCount:        taskCount[g.ID],
		}
	}

	return c.JSON(summaries)
}

// GetGoal returns the goal dashboard: open tasks, progress and milestones.
func GetGoal(c *fiber.Ctx) error {
	goalID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}

	snap, err := Lifecycle.Snapshot(c.UserContext(), goalID, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

func GetGoalLedger(c *fiber.Ctx) error {
	goalID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}
	if _, err := ownedGoal(c, goalID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
	}

	entries, err := Records.Ledger(c.UserContext(), goalID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch ledger",
		})
	}
	return c.JSON(entries)
}

// SettleGoal is the admin trigger that resolves a goal to completed or failed.
func SettleGoal(c *fiber.Ctx) error {
	goalID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}

	goal, changed, err := Lifecycle.SettleGoal(c.UserContext(), goalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"goal":    goal,
		"changed": changed,
	})
}
