package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/inforens/chat-backend/internal/dto"
)

// Transcriber converts an uploaded audio payload to the provider's JSON
// transcription response.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, filename, mimeType string) ([]byte, error)
}

type TranscribeHandler struct {
	transcriber Transcriber
}

func NewTranscribeHandler(transcriber Transcriber) *TranscribeHandler {
	return &TranscribeHandler{transcriber: transcriber}
}

// Transcribe handles POST /api/transcribe: relays the multipart file upload
// and returns the provider's JSON verbatim.
func (h *TranscribeHandler) Transcribe(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Audio file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to read audio file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to read audio file",
		})
	}

	body, err := h.transcriber.Transcribe(c.Context(), data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		slog.Error("transcription failed", "filename", fileHeader.Filename, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to transcribe audio: " + err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
