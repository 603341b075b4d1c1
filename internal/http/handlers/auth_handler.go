package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"beanbrew/internal/log"
	"beanbrew/internal/services"
	"beanbrew/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	fail := func(reason string) error {
		log.Security(c, "auth.login.fail", map[string]any{"username": req.Username, "reason": reason})
		return fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
	}
	username, ok := validate.Username(req.Username)
	if !ok {
		return fail("bad_format")
	}
	if !validate.Password(req.Password) {
		return fail("bad_password_format")
	}

	sid := ensureSID(c)
	u, err := h.Auth.Login(c.UserContext(), sid, username, req.Password)
	if err != nil {
		return fail("bad_credentials")
	}

	log.Audit(c, "auth.login.success", map[string]any{"user_id": u.ID, "username": u.Username})
	return c.JSON(userView(u))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(c.UserContext(), sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.JSON(fiber.Map{"ok": true})
}
