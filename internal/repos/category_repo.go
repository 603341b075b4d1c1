package repos

import (
	"context"

	"beanbrew/internal/domain"
)

type CategoryRepo struct{ q Queryer }

func NewCategoryRepo(q Queryer) *CategoryRepo { return &CategoryRepo{q: q} }

// Summaries lists the categories that have at least one product.
func (r *CategoryRepo) Summaries(ctx context.Context) ([]domain.CategorySummary, error) {
	out := []domain.CategorySummary{}
	err := r.q.SelectContext(ctx, &out, `
  SELECT category, COUNT(*) AS product_count
  FROM products
  GROUP BY category
  ORDER BY category
`)
	return out, err
}
