package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"seller-dashboard/internal/config"
	"seller-dashboard/internal/database"
	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/handler"
	"seller-dashboard/internal/middleware"
	"seller-dashboard/internal/realtime"
	"seller-dashboard/internal/repository"
	"seller-dashboard/internal/service"
	"seller-dashboard/internal/service/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Printf("Applied %d migrations", applied)
	}

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v (count cache disabled)", err)
	} else {
		defer redisClient.Close()
	}

	hub := realtime.NewHub()
	defer hub.Close()

	listener := realtime.NewListener(cfg.DatabaseURL, database.ChangeChannel, hub, cfg.ListenerMinReconnect, cfg.ListenerMaxReconnect)
	go func() {
		if err := listener.Run(ctx); err != nil {
			log.Printf("Change listener stopped: %v", err)
		}
	}()

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, hub, redisClient, cfg)
	handlers := handler.NewHandlers(services)

	go services.Notification.InvalidateOnChange(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, services.Auth)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		hub.Close()
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown failed: %v", err)
		}
	}()

	log.Printf("Server starting on port %s (feed scope %s)", cfg.Port, realtime.ParseScope(cfg.FeedScope))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	protected := v1.Group("",
		middleware.AuthRequired(authService),
		middleware.RequireAnyRole(domain.RoleAuthenticated, domain.RoleServiceRole),
	)

	h.Notification.Mount(protected.Group("/notifications"))
}
