package handlers

import (
	"github.com/gofiber/fiber/v2"

	"beanbrew/internal/domain"
	applog "beanbrew/internal/log"
	"beanbrew/internal/services"
)

// RequireUser lets any logged-in staff member through.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "login required")
		}
		u, err := auth.CurrentUser(c.UserContext(), sid)
		if err != nil || u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "login required")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "login required")
		}
		u, err := auth.CurrentUser(c.UserContext(), sid)
		if err != nil || u == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "login required")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			return fiber.NewError(fiber.StatusForbidden, "admin only")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// currentUser is the user an auth middleware stored on the request.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
