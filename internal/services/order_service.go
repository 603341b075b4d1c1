package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"beanbrew/internal/domain"
	applog "beanbrew/internal/log"
	"beanbrew/internal/repos"
)

type OrderService struct {
	Store     *repos.Store
	Inventory *InventoryService
	Loyalty   *LoyaltyService
	Now       Clock
}

func NewOrderService(store *repos.Store, inv *InventoryService, loyalty *LoyaltyService) *OrderService {
	return &OrderService{Store: store, Inventory: inv, Loyalty: loyalty}
}

// PointsFor is the loyalty credit earned by an order total: one point per
// whole currency unit.
func PointsFor(total decimal.Decimal) int {
	return int(total.Floor().IntPart())
}

// CreateOrder prices the lines at the current catalog prices, records the
// order, takes the stock and credits the customer, all in one transaction.
// Any failure leaves no trace and is returned as is.
func (s *OrderService) CreateOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	if len(req.Lines) == 0 {
		return "", domain.Invalid("lines", "order has no lines")
	}
	if !req.PaymentMethod.Valid() {
		return "", domain.Invalid("payment_method", fmt.Sprintf("unknown payment method %q", req.PaymentMethod))
	}
	ids := make([]int64, 0, len(req.Lines))
	for i, l := range req.Lines {
		if l.Quantity < 1 {
			return "", domain.Invalid(fmt.Sprintf("lines[%d].quantity", i), "must be at least 1")
		}
		ids = append(ids, l.ProductID)
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		CreatedAt:     s.Now.now(),
		PaymentMethod: req.PaymentMethod,
		CustomerID:    req.CustomerID,
	}
	var points int
	err := s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		products, err := tx.Products.GetMany(ctx, ids)
		if err != nil {
			return err
		}
		lines := make([]domain.OrderLine, 0, len(req.Lines))
		total := decimal.Zero
		for _, l := range req.Lines {
			p, ok := products[l.ProductID]
			if !ok {
				return &domain.NotFoundError{Entity: "product", ID: l.ProductID}
			}
			line := domain.OrderLine{
				ProductID: p.ID, Quantity: l.Quantity, UnitPrice: p.Price, Customizations: l.Customizations,
			}
			total = total.Add(line.Subtotal())
			lines = append(lines, line)
		}
		order.Total = total

		if order.CustomerID != nil {
			ok, err := tx.Customers.Exists(ctx, *order.CustomerID)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.NotFoundError{Entity: "customer", ID: *order.CustomerID}
			}
		}

		if err := tx.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("repos: insert order: %w", err)
		}
		for _, line := range lines {
			if err := tx.Orders.InsertLine(ctx, order.ID, line); err != nil {
				return fmt.Errorf("repos: insert order line: %w", err)
			}
			if _, err := s.Inventory.AdjustStockTx(ctx, tx, line.ProductID, -line.Quantity, domain.ReasonSale, domain.SystemActor); err != nil {
				return err
			}
		}
		if order.CustomerID != nil {
			points = PointsFor(total)
			if _, err := s.Loyalty.CreditPointsTx(ctx, tx, *order.CustomerID, points, domain.ReasonPurchase, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	fields := map[string]any{
		"order_id": order.ID, "total": order.Total.StringFixed(2),
		"payment_method": order.PaymentMethod, "lines": len(req.Lines),
	}
	if order.CustomerID != nil {
		fields["customer_id"] = *order.CustomerID
		fields["points"] = points
	}
	applog.Audit(nil, "order.create", fields)
	return order.ID, nil
}

// GetReceipt assembles a committed order for display. It never writes.
func (s *OrderService) GetReceipt(ctx context.Context, orderID string) (domain.Receipt, error) {
	var rc domain.Receipt
	err := s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		o, err := tx.Orders.Get(ctx, orderID)
		if err != nil {
			return err
		}
		rows, err := tx.Orders.Lines(ctx, orderID)
		if err != nil {
			return err
		}
		rc = domain.Receipt{
			OrderID:       o.ID,
			CreatedAt:     o.CreatedAt,
			Total:         o.Total,
			PaymentMethod: o.PaymentMethod,
			Lines:         make([]domain.ReceiptLine, 0, len(rows)),
		}
		for _, r := range rows {
			rc.Lines = append(rc.Lines, domain.ReceiptLine{
				ProductID:      r.ProductID,
				Name:           r.Name,
				Quantity:       r.Quantity,
				UnitPrice:      r.UnitPrice,
				Subtotal:       r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity))),
				Customizations: r.Customizations,
			})
		}
		if o.CustomerID != nil {
			c, err := tx.Customers.Get(ctx, *o.CustomerID)
			if err != nil {
				return err
			}
			rc.Customer = &domain.ReceiptCustomer{ID: c.ID, Name: c.Name, Email: c.Email}
		}
		return nil
	})
	return rc, err
}

// ListRecent returns the newest orders first.
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	return s.Store.Orders.ListLatest(ctx, limit)
}

// CustomerOrders lists one customer's orders newest first.
func (s *OrderService) CustomerOrders(ctx context.Context, customerID int64) ([]domain.Order, error) {
	if _, err := s.Store.Customers.Get(ctx, customerID); err != nil {
		return nil, err
	}
	return s.Store.Orders.ListByCustomer(ctx, customerID)
}
