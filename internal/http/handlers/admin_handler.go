package handlers

import (
	"github.com/gofiber/fiber/v2"

	"beanbrew/internal/domain"
	"beanbrew/internal/log"
	"beanbrew/internal/services"
	"beanbrew/internal/validate"
)

// AdminHandler manages staff accounts.
type AdminHandler struct {
	Auth *services.AuthService
}

type userRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=ADMIN STAFF"`
}

func userView(u *domain.User) fiber.Map {
	return fiber.Map{"id": u.ID, "username": u.Username, "name": u.Name, "role": u.Role}
}

func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req userRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	u, err := h.Auth.CreateUser(c.UserContext(), req.Username, req.Password, req.Name, req.Role)
	if err != nil {
		return err
	}
	log.Audit(c, "admin.user.create", map[string]any{"user_id": u.ID, "by": currentUser(c).ID})
	return c.Status(fiber.StatusCreated).JSON(userView(u))
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if me := currentUser(c); me != nil && me.ID == id {
		return domain.Invalid("id", "cannot delete the signed-in account")
	}
	if err := h.Auth.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	log.Audit(c, "admin.user.delete", map[string]any{"user_id": id, "by": currentUser(c).ID})
	return c.SendStatus(fiber.StatusNoContent)
}
