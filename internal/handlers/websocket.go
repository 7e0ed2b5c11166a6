package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/arnold/stakegoals-api/internal/middleware"
)

// WebSocketUpgrade is the middleware that checks the upgrade request and validates JWT
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// Authenticate via query param: ?token=<jwt>
		tokenString := c.Query("token")
		if tokenString == "" {
			// Also check Authorization header for non-browser clients
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		claims, err := middleware.ParseToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userId", claims.UserID)
		return c.Next()
	}
}

// HandleNotificationSocket streams the user's notifications as they are created
func HandleNotificationSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	Hub.Register(userID, c)
	defer Hub.Unregister(userID, c)

	// Keep connection alive; the client only sends pings
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
