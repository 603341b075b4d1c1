package repos

import (
	"context"

	"beanbrew/internal/domain"
)

type InventoryRepo struct{ q Queryer }

func NewInventoryRepo(q Queryer) *InventoryRepo { return &InventoryRepo{q: q} }

type inventoryLogRow struct {
	ID        int64  `db:"id"`
	ProductID int64  `db:"product_id"`
	Delta     int    `db:"delta"`
	Reason    string `db:"reason"`
	ActorID   string `db:"actor_id"`
	CreatedAt string `db:"created_at"`
}

func (row inventoryLogRow) entry() (domain.InventoryLogEntry, error) {
	at, err := parseTime(row.CreatedAt)
	return domain.InventoryLogEntry{
		ID: row.ID, ProductID: row.ProductID, Delta: row.Delta,
		Reason: row.Reason, ActorID: row.ActorID, CreatedAt: at,
	}, err
}

// Append writes one ledger entry and returns it with its id.
func (r *InventoryRepo) Append(ctx context.Context, e domain.InventoryLogEntry) (domain.InventoryLogEntry, error) {
	err := r.q.QueryRowxContext(ctx, `
  INSERT INTO inventory_log(product_id, delta, reason, actor_id, created_at)
  VALUES (?, ?, ?, ?, ?)
  RETURNING id
`, e.ProductID, e.Delta, e.Reason, e.ActorID, formatTime(e.CreatedAt)).Scan(&e.ID)
	return e, err
}

// History returns a product's entries newest first; limit <= 0 means all.
func (r *InventoryRepo) History(ctx context.Context, productID int64, limit int) ([]domain.InventoryLogEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []inventoryLogRow
	err := r.q.SelectContext(ctx, &rows, `
  SELECT id, product_id, delta, reason, actor_id, created_at
  FROM inventory_log
  WHERE product_id = ?
  ORDER BY id DESC
  LIMIT ?
`, productID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.InventoryLogEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Sum is the net of every ledger delta for the product.
func (r *InventoryRepo) Sum(ctx context.Context, productID int64) (int, error) {
	var sum int
	err := r.q.GetContext(ctx, &sum,
		`SELECT COALESCE(SUM(delta), 0) FROM inventory_log WHERE product_id = ?`, productID)
	return sum, err
}

// Drift lists products whose stock differs from initial stock plus the
// ledger net.
func (r *InventoryRepo) Drift(ctx context.Context) ([]domain.StockDrift, error) {
	out := []domain.StockDrift{}
	err := r.q.SelectContext(ctx, &out, `
  SELECT p.id AS product_id, p.stock, p.initial_stock, COALESCE(SUM(l.delta), 0) AS ledger_sum
  FROM products p
  LEFT JOIN inventory_log l ON l.product_id = p.id
  GROUP BY p.id
  HAVING p.stock <> p.initial_stock + COALESCE(SUM(l.delta), 0)
  ORDER BY p.id
`)
	return out, err
}
