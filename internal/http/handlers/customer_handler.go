package handlers

import (
	"github.com/gofiber/fiber/v2"

	"beanbrew/internal/domain"
	"beanbrew/internal/log"
	"beanbrew/internal/services"
	"beanbrew/internal/validate"
)

type CustomerHandler struct {
	Loyalty *services.LoyaltyService
	Order   *services.OrderService
}

type customerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,max=100"`
	Phone string `json:"phone" validate:"omitempty,max=25"`
}

type pointsRequest struct {
	Amount int    `json:"amount" validate:"gte=0"`
	Reason string `json:"reason"`
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req customerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	id, err := h.Loyalty.AddCustomer(c.UserContext(), domain.NewCustomer{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		return err
	}
	cust, err := h.Loyalty.GetCustomer(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cust)
}

// Search serves GET /api/v1/customers?q=; an empty q lists everyone.
func (h *CustomerHandler) Search(c *fiber.Ctx) error {
	found, err := h.Loyalty.FindCustomers(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(found)
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	cust, err := h.Loyalty.GetCustomer(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(cust)
}

func (h *CustomerHandler) Redeem(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req pointsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	balance, err := h.Loyalty.RedeemPoints(c.UserContext(), id, req.Amount)
	if err != nil {
		return err
	}
	log.Audit(c, "customer.redeem", map[string]any{"customer_id": id, "amount": req.Amount, "by": currentUser(c).ID})
	return c.JSON(fiber.Map{"customer_id": id, "points": balance})
}

func (h *CustomerHandler) Credit(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req pointsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	reason := req.Reason
	if reason == "" {
		reason = "manual credit"
	}
	balance, err := h.Loyalty.CreditPoints(c.UserContext(), id, req.Amount, reason)
	if err != nil {
		return err
	}
	log.Audit(c, "customer.credit", map[string]any{"customer_id": id, "amount": req.Amount, "by": currentUser(c).ID})
	return c.JSON(fiber.Map{"customer_id": id, "points": balance})
}

func (h *CustomerHandler) Points(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	hist, err := h.Loyalty.PointsHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(hist)
}

func (h *CustomerHandler) Orders(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	orders, err := h.Order.CustomerOrders(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}
