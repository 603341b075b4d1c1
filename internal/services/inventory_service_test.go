package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beanbrew/internal/domain"
)

func TestAdjustStock_RestockAndWaste(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.product(t, "Croissant", domain.CategoryBakery, "2.50", 10)

	stock, err := e.inv.AdjustStock(ctx, id, 5, "restock", "u-admin")
	require.NoError(t, err)
	assert.Equal(t, 15, stock)

	stock, err = e.inv.AdjustStock(ctx, id, -3, "waste", "u-admin")
	require.NoError(t, err)
	assert.Equal(t, 12, stock)
	assert.Equal(t, 12, e.stock(t, id))

	hist, err := e.inv.History(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, -3, hist[0].Delta)
	assert.Equal(t, "waste", hist[0].Reason)
	assert.Equal(t, "u-admin", hist[0].ActorID)
	assert.Equal(t, 5, hist[1].Delta)

	one, err := e.inv.History(ctx, id, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	e.requireLedgerHolds(t)
}

func TestAdjustStock_WasteBeyondStockFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.product(t, "Latte", domain.CategoryCoffee, "3.75", 10)

	_, err := e.inv.AdjustStock(ctx, id, -100, "waste", "admin")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 10, ise.Available)
	assert.Equal(t, 100, ise.Requested)

	assert.Equal(t, 10, e.stock(t, id))
	hist, err := e.inv.History(ctx, id, 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestAdjustStock_DownToZero(t *testing.T) {
	e := newEnv(t)
	id := e.product(t, "Mug", domain.CategoryMerchandise, "12.00", 2)
	stock, err := e.inv.AdjustStock(context.Background(), id, -2, "waste", "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestAdjustStock_BadInput(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.product(t, "Mug", domain.CategoryMerchandise, "12.00", 2)

	_, err := e.inv.AdjustStock(ctx, id, 0, "count", "admin")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.inv.AdjustStock(ctx, id, 1, "  ", "admin")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.inv.AdjustStock(ctx, 404, 1, "restock", "admin")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.inv.History(ctx, 404, 0)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcile_ReportsDrift(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.product(t, "Tea", domain.CategoryTea, "2.75", 10)
	_, err := e.inv.AdjustStock(ctx, id, 4, "restock", "admin")
	require.NoError(t, err)
	e.requireLedgerHolds(t)

	// a write that bypasses the ledger
	_, err = e.store.DB.Exec(`UPDATE products SET stock = stock + 1 WHERE id = ?`, id)
	require.NoError(t, err)

	drift, err := e.inv.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, domain.StockDrift{ProductID: id, Stock: 15, InitialStock: 10, LedgerSum: 4}, drift[0])
}

func TestInventoryLog_IsAppendOnly(t *testing.T) {
	e := newEnv(t)
	id := e.product(t, "Tea", domain.CategoryTea, "2.75", 10)
	_, err := e.inv.AdjustStock(context.Background(), id, 1, "restock", "admin")
	require.NoError(t, err)

	_, err = e.store.DB.Exec(`UPDATE inventory_log SET delta = 100`)
	require.Error(t, err)
	_, err = e.store.DB.Exec(`DELETE FROM inventory_log`)
	require.Error(t, err)
}
