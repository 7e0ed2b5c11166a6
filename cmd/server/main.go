package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnold/stakegoals-api/internal/config"
	"github.com/arnold/stakegoals-api/internal/database"
	"github.com/arnold/stakegoals-api/internal/handlers"
	"github.com/arnold/stakegoals-api/internal/lifecycle"
	"github.com/arnold/stakegoals-api/internal/routes"
	"github.com/arnold/stakegoals-api/internal/services"
	"github.com/arnold/stakegoals-api/internal/store"
	"github.com/arnold/stakegoals-api/internal/telemetry"
	"github.com/arnold/stakegoals-api/internal/verification"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	records := store.New(database.DB)
	notifier := services.NewNotifier(database.DB, services.NewPush(ctx, cfg.FCMServiceAccount), handlers.Hub)
	coord := lifecycle.New(records, notifier, lifecycle.Options{
		Policy: cfg.Policy,
		Engine: verification.NewEngine(cfg.VerifyDelay),
	})
	handlers.Init(coord, records, notifier)
	log.Printf("Rewards: redistributing the %s pool, verification delay %s", cfg.Policy, cfg.VerifyDelay)

	app := fiber.New(fiber.Config{
		AppName: cfg.ServiceName,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	routes.Setup(app)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracing shutdown: %v", err)
	}
}
