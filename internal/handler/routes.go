package handler

import (
	"taskhub-api/internal/middleware"
	"taskhub-api/internal/service"
	"taskhub-api/internal/ws"
	"taskhub-api/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Handlers bundles every HTTP handler together with what the route table
// needs to authenticate and authorize requests.
type Handlers struct {
	Auth       *AuthHandler
	Permission *PermissionHandler
	Role       *RoleHandler
	User       *UserHandler
	Task       *TaskHandler
	Audit      *AuditHandler
	Health     *HealthHandler

	Guard  *service.Guard
	Issuer *jwt.Issuer
	Hub    *ws.Hub
}

// Register mounts the API under /api/v1 and the websocket endpoint at /ws.
func Register(app *fiber.App, h Handlers) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Get("/health", h.Health.Health)

	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/register", h.Auth.Register)
	auth.Get("/me", middleware.RequireAuth(h.Issuer), h.Auth.Me)

	api.Get("/permissions/structure", h.Permission.GetStructure)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(h.Issuer))
	can := func(key string) fiber.Handler {
		return middleware.RequirePermission(h.Guard, key)
	}

	protected.Post("/permissions/sync", can("permissions.sync"), h.Permission.SyncPermissions)

	protected.Get("/roles", can("roles.view_roles"), h.Role.GetRoles)
	protected.Get("/roles/:id", can("roles.view_roles"), h.Role.GetRole)
	protected.Post("/roles", can("roles.create_roles"), h.Role.CreateRole)
	protected.Put("/roles/:id", can("roles.update_roles"), h.Role.UpdateRole)
	protected.Delete("/roles/:id", can("roles.delete_roles"), h.Role.DeleteRole)

	protected.Get("/users", can("users.view_users"), h.User.GetUsers)
	protected.Get("/users/:id", can("users.view_users"), h.User.GetUser)
	protected.Post("/users", can("users.create_users"), h.User.CreateUser)
	protected.Put("/users/:id", can("users.update_users"), h.User.UpdateUser)
	protected.Delete("/users/:id", can("users.delete_users"), h.User.DeleteUser)

	protected.Get("/tasks", can("tasks.view"), h.Task.GetTasks)
	protected.Get("/tasks/:id", can("tasks.view"), h.Task.GetTask)
	protected.Post("/tasks", can("tasks.create"), h.Task.CreateTask)
	protected.Put("/tasks/:id", can("tasks.update"), h.Task.UpdateTask)
	protected.Delete("/tasks/:id", can("tasks.delete"), h.Task.DeleteTask)

	protected.Get("/audit-log", can("audit.view"), h.Audit.GetAuditLog)

	// WebSocket Route
	if h.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(h.Hub.Serve))
	}
}
