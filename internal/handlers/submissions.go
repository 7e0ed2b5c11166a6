package handlers

import (
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func ListSubmissions(c *fiber.Ctx) error {
	subs, err := Records.ListSubmissions(c.UserContext(), c.Query("status", models.SubmissionRejected))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch submissions",
		})
	}
	return c.JSON(subs)
}

// ApproveSubmission overrides the scorer and completes the task.
func ApproveSubmission(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid submission ID")
	}
	out, err := Lifecycle.OverrideSubmission(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
