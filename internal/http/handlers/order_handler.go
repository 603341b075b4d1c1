package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"beanbrew/internal/domain"
	applog "beanbrew/internal/log"
	"beanbrew/internal/services"
	"beanbrew/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
	// Location is used to print receipt times.
	Location *time.Location
}

type orderRequest struct {
	Lines         []domain.LineRequest `json:"lines" validate:"required,min=1"`
	PaymentMethod string               `json:"payment_method" validate:"required"`
	CustomerID    *int64               `json:"customer_id"`
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req orderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	pm, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return err
	}
	oid, err := h.Order.CreateOrder(c.UserContext(), domain.OrderRequest{
		Lines: req.Lines, PaymentMethod: pm, CustomerID: req.CustomerID,
	})
	if err != nil {
		return err
	}
	applog.Audit(c, "order.placed", map[string]any{"order_id": oid, "by": currentUser(c).ID})

	rc, err := h.Order.GetReceipt(c.UserContext(), oid)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rc)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Order.ListRecent(c.UserContext(), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	rc, err := h.Order.GetReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(rc)
}

// ReceiptPage renders the printable receipt.
func (h *OrderHandler) ReceiptPage(c *fiber.Ctx) error {
	rc, err := h.Order.GetReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return renderError(c, err)
	}
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}
	return render(c, "receipt", fiber.Map{
		"R":    rc,
		"When": rc.CreatedAt.In(loc).Format("2006-01-02 15:04"),
	})
}
