package handler

import (
	"taskhub-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PermissionHandler struct {
	permissionService service.PermissionService
}

func NewPermissionHandler(permissionService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// GetStructure returns the permission catalog grouped by module
// GET /api/v1/permissions/structure
func (h *PermissionHandler) GetStructure(c *fiber.Ctx) error {
	modules, err := h.permissionService.GetStructure(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"modules": modules})
}

// SyncPermissions reconciles the catalog with the manifest on disk
// POST /api/v1/permissions/sync
func (h *PermissionHandler) SyncPermissions(c *fiber.Ctx) error {
	result, err := h.permissionService.SyncPermissions(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
