package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/inforens/chat-backend/internal/config"
	"github.com/inforens/chat-backend/internal/database"
	"github.com/inforens/chat-backend/internal/dto"
	"github.com/inforens/chat-backend/internal/handlers"
	"github.com/inforens/chat-backend/internal/logging"
	"github.com/inforens/chat-backend/internal/middleware"
	"github.com/inforens/chat-backend/internal/routes"
	"github.com/inforens/chat-backend/internal/services"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.PerplexityAPIKey == "" {
		slog.Error("PERPLEXITY_API_KEY environment variable is required")
		os.Exit(1)
	}

	// Database. An unreachable store must not block the chat feature: the
	// server keeps running and ledger writes fail individually instead.
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Warn("database unavailable, query logging disabled", "error", err)
		db = nil
	}

	ledger := services.NewQueryLedger(db, cfg.DBTimeout)
	if err := ledger.EnsureSchema(); err != nil {
		slog.Warn("could not ensure queries schema", "error", err)
	}

	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})
	if db != nil {
		if err := database.MigrateShared(db); err != nil {
			slog.Warn("system_logs migration failed", "error", err)
		} else {
			// PostgreSQL log handler (ERROR+ async batch)
			pgLogHandler = logging.NewPGHandler(db)
			slog.SetDefault(slog.New(logging.NewMultiHandler(
				slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
				pgLogHandler,
			)))
			logging.StartCleanup(db, cleanupDone)
		}
	}

	// Services
	answerService := services.NewAnswerService(cfg)
	transcriptionService := services.NewTranscriptionService(cfg)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	chatHandler := handlers.NewChatHandler(answerService, ledger)
	transcribeHandler := handlers.NewTranscribeHandler(transcriptionService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, healthHandler, chatHandler, transcribeHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("database close error", "error", err)
			}
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
