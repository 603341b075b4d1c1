package services

import (
	"context"
	"strings"

	"beanbrew/internal/domain"
	applog "beanbrew/internal/log"
	"beanbrew/internal/repos"
)

type InventoryService struct {
	Store *repos.Store
	Now   Clock
}

func NewInventoryService(store *repos.Store) *InventoryService {
	return &InventoryService{Store: store}
}

// AdjustStock applies delta to a product's stock and records it in the
// ledger, both in one transaction. It returns the new stock.
func (s *InventoryService) AdjustStock(ctx context.Context, productID int64, delta int, reason, actorID string) (int, error) {
	var stock int
	err := s.Store.WithTx(ctx, func(tx *repos.Tx) error {
		var err error
		stock, err = s.AdjustStockTx(ctx, tx, productID, delta, reason, actorID)
		return err
	})
	if err != nil {
		return 0, err
	}
	applog.Audit(nil, "inventory.adjust", map[string]any{
		"product_id": productID, "delta": delta, "reason": strings.TrimSpace(reason),
		"actor_id": actorID, "stock": stock,
	})
	return stock, nil
}

// AdjustStockTx is AdjustStock inside a transaction the caller owns. A
// failure leaves the caller to roll back.
func (s *InventoryService) AdjustStockTx(ctx context.Context, tx *repos.Tx, productID int64, delta int, reason, actorID string) (int, error) {
	reason = strings.TrimSpace(reason)
	switch {
	case delta == 0:
		return 0, domain.Invalid("delta", "must not be zero")
	case reason == "":
		return 0, domain.Invalid("reason", "required")
	case strings.TrimSpace(actorID) == "":
		return 0, domain.Invalid("actor_id", "required")
	}

	now := s.Now.now()
	stock, err := tx.Products.ApplyStockDelta(ctx, productID, delta, now)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Inventory.Append(ctx, domain.InventoryLogEntry{
		ProductID: productID, Delta: delta, Reason: reason, ActorID: actorID, CreatedAt: now,
	}); err != nil {
		return 0, err
	}
	return stock, nil
}

// History returns the product's ledger newest first; limit <= 0 means all.
func (s *InventoryService) History(ctx context.Context, productID int64, limit int) ([]domain.InventoryLogEntry, error) {
	if _, err := s.Store.Products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.Store.Inventory.History(ctx, productID, limit)
}

// Reconcile lists every product whose stock disagrees with its ledger.
func (s *InventoryService) Reconcile(ctx context.Context) ([]domain.StockDrift, error) {
	drift, err := s.Store.Inventory.Drift(ctx)
	if err != nil {
		return nil, err
	}
	if len(drift) > 0 {
		applog.Error(nil, "inventory.drift", nil, map[string]any{"products": len(drift)})
	}
	return drift, nil
}
