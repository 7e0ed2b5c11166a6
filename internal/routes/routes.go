package routes

import (
	"github.com/arnold/stakegoals-api/internal/handlers"
	"github.com/arnold/stakegoals-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func Setup(app *fiber.App) {
	api := app.Group("/api")

	protected := api.Group("/", middleware.Protected())

	goals := protected.Group("/goals")
	goals.Get("/", handlers.GetGoals)
	goals.Post("/", handlers.CreateGoal)
	goals.Get("/:id", handlers.GetGoal)
	goals.Get("/:id/ledger", handlers.GetGoalLedger)

	// Tasks and proof
	goals.Post("/:id/tasks", handlers.CreateTask)
	goals.Post("/:id/tasks/generate", handlers.GenerateTasks)
	goals.Delete("/:id/tasks", handlers.ClearTasks)
	goals.Delete("/:id/tasks/:taskId", handlers.DeleteTask)
	goals.Post("/:id/tasks/:taskId/proof", handlers.SubmitProof)

	// Stake in, earnings out
	goals.Post("/:id/payments", handlers.SubmitPayment)
	goals.Post("/:id/withdrawals", handlers.RequestWithdrawal)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", handlers.GetNotifications)
	notifications.Put("/:id/read", handlers.MarkNotificationRead)
	notifications.Post("/read-all", handlers.MarkAllRead)

	// Device token for push notifications
	protected.Post("/device-token", handlers.RegisterDeviceToken)

	// Review queue
	admin := protected.Group("/admin", middleware.AdminOnly())
	admin.Get("/payments", handlers.ListPayments)
	admin.Post("/payments/:id/approve", handlers.ApprovePayment)
	admin.Post("/payments/:id/reject", handlers.RejectPayment)
	admin.Get("/withdrawals", handlers.ListWithdrawals)
	admin.Post("/withdrawals/:id/approve", handlers.ApproveWithdrawal)
	admin.Post("/withdrawals/:id/reject", handlers.RejectWithdrawal)
	admin.Get("/submissions", handlers.ListSubmissions)
	admin.Post("/submissions/:id/approve", handlers.ApproveSubmission)
	admin.Post("/goals/:id/settle", handlers.SettleGoal)

	// WebSocket for live notifications
	app.Use("/ws", handlers.WebSocketUpgrade())
	app.Get("/ws/notifications", websocket.New(handlers.HandleNotificationSocket))
}
