package handlers

import (
	"strconv"

	"github.com/arnold/stakegoals-api/internal/database"
	"github.com/arnold/stakegoals-api/internal/middleware"
	"github.com/arnold/stakegoals-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns paginated notifications for the current user
func GetNotifications(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var notifications []models.Notification
	database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications)

	var total int64
	database.DB.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)

	var unread int64
	database.DB.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&unread)

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         total,
		"unread":        unread,
		"page":          page,
		"limit":         limit,
	})
}

// MarkNotificationRead marks a single notification as read
func MarkNotificationRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	notifID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID")
	}

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notifID, userID).
		Update("read", true)

	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead marks all notifications as read for the current user
func MarkAllRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)

	return c.JSON(fiber.Map{"success": true})
}

// RegisterDeviceToken saves the FCM token for push notifications
func RegisterDeviceToken(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return badRequest(c, "Token is required")
	}

	ensureUser(c)
	database.DB.Model(&models.User{}).Where("id = ?", userID).Update("fcm_token", req.Token)

	return c.JSON(fiber.Map{"success": true})
}
