package handlers

import (
	"github.com/gofiber/fiber/v2"

	"beanbrew/internal/services"
	"beanbrew/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

type stockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,max=80"`
}

// Adjust serves POST /api/v1/products/:id/stock; the signed-in admin is
// recorded as the actor.
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req stockRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	stock, err := h.Inv.AdjustStock(c.UserContext(), id, req.Delta, req.Reason, currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"product_id": id, "stock": stock})
}

func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	entries, err := h.Inv.History(c.UserContext(), id, c.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	drift, err := h.Inv.Reconcile(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": len(drift) == 0, "drift": drift})
}
