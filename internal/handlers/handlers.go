package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/arnold/stakegoals-api/internal/database"
	"github.com/arnold/stakegoals-api/internal/lifecycle"
	"github.com/arnold/stakegoals-api/internal/middleware"
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/arnold/stakegoals-api/internal/services"
	"github.com/arnold/stakegoals-api/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// Shared dependencies, set once at startup before routes are served.
var (
	Lifecycle *lifecycle.Coordinator
	Records   *store.Store
	Notices   lifecycle.Notifier = lifecycle.NopNotifier{}
)

// Hub holds the open notification sockets per user.
var Hub = services.NewHub()

// Init installs the coordinator and its collaborators.
func Init(coord *lifecycle.Coordinator, records *store.Store, notices lifecycle.Notifier) {
	Lifecycle = coord
	Records = records
	if notices != nil {
		Notices = notices
	}
}

// respondError maps lifecycle errors to their HTTP status with a short
// title and description.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	title, msg := "Something went wrong", "please try again"

	var le *lifecycle.Error
	switch {
	case errors.As(err, &le):
		title, msg = le.Title, le.Msg
		switch {
		case errors.Is(le.Kind, lifecycle.ErrValidation):
			status = fiber.StatusBadRequest
		case errors.Is(le.Kind, lifecycle.ErrNotFound):
			status = fiber.StatusNotFound
		case errors.Is(le.Kind, lifecycle.ErrConflict):
			status = fiber.StatusConflict
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusRequestTimeout
		title, msg = "Request cancelled", "verification did not finish, please retry"
	}
	if status == fiber.StatusInternalServerError {
		log.Printf("handlers: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": title, "message": msg})
}

func badRequest(c *fiber.Ctx, title string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": title})
}

// reviewNote reads the optional review body. An empty body is allowed.
func reviewNote(c *fiber.Ctx, req *models.ReviewRequest) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(req)
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	return id, err == nil
}

// ownedGoal loads a goal belonging to the current user.
func ownedGoal(c *fiber.Ctx, goalID uuid.UUID) (*models.Goal, error) {
	var goal models.Goal
	err := database.DB.Where("id = ? AND user_id = ?", goalID, middleware.GetUserID(c)).First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// ensureUser creates the local user row on first sight of a token.
func ensureUser(c *fiber.Ctx) {
	email, _ := c.Locals("email").(string)
	role, _ := c.Locals("role").(string)
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{ID: middleware.GetUserID(c), Email: email, Role: role}
	if err := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
		log.Printf("handlers: failed to record user %s: %v", user.ID, err)
	}
}
