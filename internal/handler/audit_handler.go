package handler

import (
	"taskhub-api/internal/middleware"
	"taskhub-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetAuditLog returns the caller organization's audit trail, newest first
// GET /api/v1/audit-log
func (h *AuditHandler) GetAuditLog(c *fiber.Ctx) error {
	entries, err := h.auditService.List(c.UserContext(), middleware.CallerFrom(c), pageFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}
