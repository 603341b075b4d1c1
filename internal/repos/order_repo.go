package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"beanbrew/internal/domain"
)

type OrderRepo struct{ q Queryer }

func NewOrderRepo(q Queryer) *OrderRepo { return &OrderRepo{q: q} }

type orderRow struct {
	ID            string          `db:"id"`
	CreatedAt     string          `db:"created_at"`
	Total         decimal.Decimal `db:"total"`
	PaymentMethod string          `db:"payment_method"`
	CustomerID    sql.NullInt64   `db:"customer_id"`
}

func (row orderRow) order() (domain.Order, error) {
	at, err := parseTime(row.CreatedAt)
	o := domain.Order{
		ID:            row.ID,
		CreatedAt:     at,
		Total:         row.Total,
		PaymentMethod: domain.PaymentMethod(row.PaymentMethod),
	}
	if row.CustomerID.Valid {
		id := row.CustomerID.Int64
		o.CustomerID = &id
	}
	return o, err
}

func ordersFromRows(rows []orderRow) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.order()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// ReceiptLineRow is one stored order line joined with its product name.
type ReceiptLineRow struct {
	ProductID      int64                 `db:"product_id"`
	Name           string                `db:"name"`
	Quantity       int                   `db:"quantity"`
	UnitPrice      decimal.Decimal       `db:"price"`
	Customizations domain.Customizations `db:"customizations"`
}

// SaleLineRow is one sold line inside a reporting window.
type SaleLineRow struct {
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Category  domain.Category `db:"category"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"price"`
}

// Create inserts the order header.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO orders(id, created_at, total, payment_method, customer_id)
	  VALUES (?, ?, ?, ?, ?)
	`, o.ID, formatTime(o.CreatedAt), o.Total, o.PaymentMethod, o.CustomerID)
	return err
}

// InsertLine stores one line with its captured unit price.
func (r *OrderRepo) InsertLine(ctx context.Context, orderID string, l domain.OrderLine) error {
	_, err := r.q.ExecContext(ctx, `
	  INSERT INTO order_items(order_id, product_id, quantity, price, customizations)
	  VALUES (?, ?, ?, ?, ?)
	`, orderID, l.ProductID, l.Quantity, l.UnitPrice, l.Customizations)
	return err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var row orderRow
	err := r.q.GetContext(ctx, &row, `
		SELECT id, created_at, total, payment_method, customer_id
		FROM orders
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, &domain.NotFoundError{Entity: "order", ID: id}
	}
	if err != nil {
		return domain.Order{}, err
	}
	return row.order()
}

// Lines returns the order's lines in the order they were placed.
func (r *OrderRepo) Lines(ctx context.Context, orderID string) ([]ReceiptLineRow, error) {
	var out []ReceiptLineRow
	err := r.q.SelectContext(ctx, &out, `
		SELECT oi.product_id, p.name, oi.quantity, oi.price, oi.customizations
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id
	`, orderID)
	return out, err
}

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []orderRow
	err := r.q.SelectContext(ctx, &rows, `
		SELECT id, created_at, total, payment_method, customer_id
		FROM orders
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return ordersFromRows(rows)
}

// ListByCustomer returns a customer's orders newest first.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	var rows []orderRow
	err := r.q.SelectContext(ctx, &rows, `
		SELECT id, created_at, total, payment_method, customer_id
		FROM orders
		WHERE customer_id = ?
		ORDER BY created_at DESC, id
	`, customerID)
	if err != nil {
		return nil, err
	}
	return ordersFromRows(rows)
}

// Between returns orders with from <= created_at < to.
func (r *OrderRepo) Between(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	var rows []orderRow
	err := r.q.SelectContext(ctx, &rows, `
		SELECT id, created_at, total, payment_method, customer_id
		FROM orders
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at, id
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	return ordersFromRows(rows)
}

// SaleLinesBetween returns every line of the orders in [from, to).
func (r *OrderRepo) SaleLinesBetween(ctx context.Context, from, to time.Time) ([]SaleLineRow, error) {
	var out []SaleLineRow
	err := r.q.SelectContext(ctx, &out, `
		SELECT oi.product_id, p.name, p.category, oi.quantity, oi.price
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.created_at >= ? AND o.created_at < ?
		ORDER BY oi.id
	`, formatTime(from), formatTime(to))
	return out, err
}
