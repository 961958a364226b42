package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/inforens/chat-backend/internal/dto"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check handles GET /api/health. The service is considered healthy whenever
// it can serve requests; a degraded ledger does not change that.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(dto.StatusResponse{Status: "ok"})
}
