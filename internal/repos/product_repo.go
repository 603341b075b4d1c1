package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"beanbrew/internal/domain"
)

const productCols = `id, name, category, price, cost, stock, initial_stock`

type ProductRepo struct{ q Queryer }

func NewProductRepo(q Queryer) *ProductRepo { return &ProductRepo{q: q} }

// Insert stores a new product with stock equal to its initial stock.
func (r *ProductRepo) Insert(ctx context.Context, p domain.NewProduct, now time.Time) (int64, error) {
	var id int64
	err := r.q.QueryRowxContext(ctx, `
  INSERT INTO products(name, category, price, cost, stock, initial_stock, created_at)
  VALUES (?, ?, ?, ?, ?, ?, ?)
  RETURNING id
`, p.Name, p.Category, p.Price, p.Cost, p.InitialStock, p.InitialStock, formatTime(now)).Scan(&id)
	return id, err
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.q.GetContext(ctx, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, &domain.NotFoundError{Entity: "product", ID: id}
	}
	return p, err
}

// GetMany loads the given products keyed by id. Unknown ids are absent
// from the map.
func (r *ProductRepo) GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+productCols+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := r.q.SelectContext(ctx, &rows, r.q.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// List returns products ordered by category then name; a nil category
// means all of them.
func (r *ProductRepo) List(ctx context.Context, category *domain.Category) ([]domain.Product, error) {
	where, args := `1 = 1`, []any{}
	if category != nil {
		where += ` AND category = ?`
		args = append(args, *category)
	}
	out := []domain.Product{}
	err := r.q.SelectContext(ctx, &out, `
  SELECT `+productCols+`
  FROM products
  WHERE `+where+`
  ORDER BY category, name, id`, args...)
	return out, err
}

// ApplyStockDelta adds delta to the product's stock unless that would take
// it below zero, and returns the new stock.
func (r *ProductRepo) ApplyStockDelta(ctx context.Context, id int64, delta int, now time.Time) (int, error) {
	var stock int
	err := r.q.QueryRowxContext(ctx, `
  UPDATE products
  SET stock = stock + ?, updated_at = ?
  WHERE id = ? AND stock + ? >= 0
  RETURNING stock
`, delta, formatTime(now), id, delta).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	// Either the product is missing or the guard rejected the change.
	var cur int
	err = r.q.GetContext(ctx, &cur, `SELECT stock FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return 0, err
	}
	return cur, &domain.InsufficientStockError{ProductID: id, Available: cur, Requested: -delta}
}

func (r *ProductRepo) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal, now time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE products SET price = ?, updated_at = ? WHERE id = ?`, price, formatTime(now), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}
