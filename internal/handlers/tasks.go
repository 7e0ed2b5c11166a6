package handlers

import (
	"github.com/arnold/stakegoals-api/internal/lifecycle"
	"github.com/arnold/stakegoals-api/internal/middleware"
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/arnold/stakegoals-api/internal/verification"
	"github.com/gofiber/fiber/v2"
)

func CreateTask(c *fiber.Ctx) error {
	goalID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}

	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tasks, err := Lifecycle.AddTasks(c.UserContext(), goalID, middleware.GetUserID(c), []lifecycle.NewTask{{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
	}}, models.TaskSourceManual)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tasks)
}

// GenerateTasks stores a batch of AI-suggested tasks. The suggestions are
// produced by the client's assistant; the API only persists and prices them.
func GenerateTasks(c *fiber.Ctx) error {
	goalID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}

	var req models.GenerateTasksRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	in := make([]lifecycle.NewTask, len(req.Tasks))
	for i, t := range req.Tasks {
		in[i] = lifecycle.NewTask{Title: t.Title, Description: t.Description, Difficulty: t.Difficulty}
	}

	tasks, err := Lifecycle.AddTasks(c.UserContext(), goalID, middleware.GetUserID(c), in, models.TaskSourceAI)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tasks)
}

func DeleteTask(c *fiber.Ctx) error {
	goalID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}

	if err := Lifecycle.DeleteTask(c.UserContext(), goalID, middleware.GetUserID(c), taskID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ClearTasks removes every task and resets earnings. The client must pass
// ?confirm=true since this cannot be undone.
func ClearTasks(c *fiber.Ctx) error {
	goalID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}
	if c.Query("confirm") != "true" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Confirmation required",
			"message": "clearing tasks resets your progress to zero; repeat with ?confirm=true",
		})
	}

	goal, err := Lifecycle.ClearTasks(c.UserContext(), goalID, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(goal)
}

func SubmitProof(c *fiber.Ctx) error {
	goalID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}

	var req models.SubmitProofRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	out, err := Lifecycle.SubmitProof(c.UserContext(), goalID, middleware.GetUserID(c), taskID, proofFrom(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func proofFrom(req models.SubmitProofRequest) verification.Proof {
	return verification.Proof{
		Type:           verification.ProofType(req.Type),
		GithubRepo:     req.GithubRepo,
		GithubCommits:  req.GithubCommits,
		CoursePlatform: req.CoursePlatform,
		CourseProgress: req.CourseProgress,
		Description:    req.Description,
		FileURL:        req.FileURL,
	}
}
