package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/inforens/chat-backend/internal/dto"
	"github.com/inforens/chat-backend/internal/models"
)

// Answerer is the ask(question) -> answer capability the handler composes.
type Answerer interface {
	Ask(ctx context.Context, question string) (string, error)
	ModelTag() string
}

// Ledger is the subset of the query ledger the chat handlers need.
type Ledger interface {
	Insert(ctx context.Context, query *models.Query) (int64, error)
	UpdateFeedback(ctx context.Context, id int64, thumbsUp, thumbsDown bool) (int64, error)
}

type ChatHandler struct {
	answers Answerer
	ledger  Ledger
}

func NewChatHandler(answers Answerer, ledger Ledger) *ChatHandler {
	return &ChatHandler{answers: answers, ledger: ledger}
}

// Ask handles POST /api/ask.
//
// The ledger insert happens on both outcomes of the downstream call, so
// failed asks are auditable too. The insert itself is best-effort: a ledger
// outage must not take down the chat feature, the caller just gets a null
// messageId.
func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	var req dto.AskRequest
	// Tolerate missing or malformed bodies; the emptiness check below covers them.
	_ = c.BodyParser(&req)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Question is required",
		})
	}

	ip := c.Get("X-Forwarded-For")
	if ip == "" {
		ip = c.IP()
	}
	userAgent := c.Get(fiber.HeaderUserAgent)

	start := time.Now()
	answer, err := h.answers.Ask(c.Context(), question)
	latencyMs := int(time.Since(start).Milliseconds())

	record := &models.Query{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Question:  question,
		Model:     h.answers.ModelTag(),
		LatencyMs: latencyMs,
		IPAddress: optional(ip),
		UserAgent: optional(userAgent),
	}

	if err != nil {
		message := err.Error()
		record.Error = &message
		h.logQuery(c.Context(), record)
		slog.Error("answer service call failed", "error", err, "latency_ms", latencyMs)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to get answer: " + message,
		})
	}

	record.Answer = &answer
	record.Success = true
	messageID := h.logQuery(c.Context(), record)

	return c.JSON(dto.AskResponse{
		Answer:    answer,
		LatencyMs: latencyMs,
		MessageID: messageID,
	})
}

// Feedback handles POST /api/feedback.
//
// An unmatched messageId updates zero rows and still reports success; the
// warn log is the only trace. Store failures are surfaced, since recording
// the feedback is the request's entire effect.
func (h *ChatHandler) Feedback(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
		})
	}
	if req.MessageID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Message ID is required",
		})
	}

	rows, err := h.ledger.UpdateFeedback(c.Context(), *req.MessageID, req.ThumbsUp, req.ThumbsDown)
	if err != nil {
		slog.Error("failed to update feedback", "message_id", *req.MessageID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to record feedback",
		})
	}
	if rows == 0 {
		slog.Warn("feedback for unknown message id", "message_id", *req.MessageID)
	}

	return c.JSON(dto.StatusResponse{Status: "ok"})
}

func (h *ChatHandler) logQuery(ctx context.Context, record *models.Query) *int64 {
	id, err := h.ledger.Insert(ctx, record)
	if err != nil {
		slog.Warn("failed to log query", "error", err)
		return nil
	}
	return &id
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
