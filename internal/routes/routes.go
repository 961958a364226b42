package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/inforens/chat-backend/internal/handlers"
)

func Setup(
	app *fiber.App,
	healthHandler *handlers.HealthHandler,
	chatHandler *handlers.ChatHandler,
	transcribeHandler *handlers.TranscribeHandler,
) {
	api := app.Group("/api")

	api.Get("/health", healthHandler.Check)
	api.Post("/ask", chatHandler.Ask)
	api.Post("/feedback", chatHandler.Feedback)
	api.Post("/transcribe", transcribeHandler.Transcribe)
}
