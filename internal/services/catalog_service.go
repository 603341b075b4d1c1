package services

import (
	"context"

	"github.com/shopspring/decimal"

	"beanbrew/internal/domain"
	applog "beanbrew/internal/log"
	"beanbrew/internal/repos"
	"beanbrew/internal/validate"
)

type CatalogService struct {
	Store *repos.Store
	Now   Clock
}

func NewCatalogService(store *repos.Store) *CatalogService {
	return &CatalogService{Store: store}
}

// checkMoney rejects negative amounts and more than two decimal places.
func checkMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return domain.Invalid(field, "must not be negative")
	}
	if !d.Equal(d.Round(2)) {
		return domain.Invalid(field, "at most 2 decimal places")
	}
	return nil
}

func (s *CatalogService) AddProduct(ctx context.Context, p domain.NewProduct) (int64, error) {
	name, ok := validate.Name(p.Name)
	if !ok {
		return 0, domain.Invalid("name", "required, at most 80 characters")
	}
	p.Name = name
	if !p.Category.Valid() {
		return 0, domain.Invalid("category", "unknown category")
	}
	if err := checkMoney("price", p.Price); err != nil {
		return 0, err
	}
	if err := checkMoney("cost", p.Cost); err != nil {
		return 0, err
	}
	if p.InitialStock < 0 {
		return 0, domain.Invalid("initial_stock", "must not be negative")
	}

	id, err := s.Store.Products.Insert(ctx, p, s.Now.now())
	if err != nil {
		return 0, err
	}
	applog.Audit(nil, "catalog.add_product", map[string]any{
		"product_id": id, "name": p.Name, "category": p.Category,
		"price": p.Price.StringFixed(2), "initial_stock": p.InitialStock,
	})
	return id, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.Store.Products.Get(ctx, id)
}

// ListProducts returns products ordered by category and name, optionally
// restricted to one category.
func (s *CatalogService) ListProducts(ctx context.Context, category *domain.Category) ([]domain.Product, error) {
	if category != nil && !category.Valid() {
		return nil, domain.Invalid("category", "unknown category")
	}
	return s.Store.Products.List(ctx, category)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	return s.Store.Categories.Summaries(ctx)
}

// UpdatePrice changes the live price. Lines of committed orders keep the
// price they captured.
func (s *CatalogService) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	if err := checkMoney("price", price); err != nil {
		return err
	}
	if err := s.Store.Products.UpdatePrice(ctx, id, price, s.Now.now()); err != nil {
		return err
	}
	applog.Audit(nil, "catalog.update_price", map[string]any{"product_id": id, "price": price.StringFixed(2)})
	return nil
}
