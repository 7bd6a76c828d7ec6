package middleware

import (
	"errors"
	"strings"

	"taskhub-api/internal/model"
	"taskhub-api/internal/service"
	"taskhub-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const callerKey = "caller"

// RequireAuth validates the bearer token and stores the caller in the
// request locals. The role is resolved later, per permission check.
func RequireAuth(issuer *jwt.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := issuer.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals(callerKey, &model.Caller{
			UserID:         claims.UserID,
			Email:          claims.Email,
			OrganizationID: claims.OrganizationID,
			RoleSlug:       claims.RoleSlug,
		})
		return c.Next()
	}
}

// CallerFrom returns the caller stored by RequireAuth, or nil.
func CallerFrom(c *fiber.Ctx) *model.Caller {
	caller, _ := c.Locals(callerKey).(*model.Caller)
	return caller
}

// RequirePermission lets the request through only when the guard allows the
// caller to use key. Authorization failures share one response body so the
// reason is not disclosed.
func RequirePermission(guard *service.Guard, key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, err := guard.Authorize(c.UserContext(), CallerFrom(c), key)
		switch {
		case err == nil:
			return c.Next()
		case errors.Is(err, service.ErrNotAuthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		case errors.Is(err, service.ErrNoRoleAssigned),
			errors.Is(err, service.ErrRoleInactive),
			errors.Is(err, service.ErrInsufficientPermissions):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
	}
}
