package handler

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type fixture struct {
	cart  *service.CartService
	view  *ViewState
	store *storage.MemorySnapshotStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	view := NewViewState()
	ledger := service.NewStockLedger(storage.NewMemoryStockAdapter(), view, zap.NewNop())
	require.NoError(t, ledger.Register(ctx, []domain.Product{
		{ID: "cpu1", Name: "Ryzen 5", Brand: "AMD", Price: decimal.RequireFromString("100.00"), Stock: 10, DiscountPercent: 10},
		{ID: "gpu1", Name: "RTX 4070", Brand: "NVIDIA", Price: decimal.RequireFromString("300.00"), Stock: 1, DiscountPercent: 20},
	}, false))

	store := storage.NewMemorySnapshotStore()
	cart := service.NewCartService("test", ledger, store, view, 10, zap.NewNop())
	t.Cleanup(cart.Close)

	return &fixture{cart: cart, view: view, store: store}
}

func (f *fixture) mustPrice(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := f.cart.Ledger().Product(productID)
	require.NoError(t, err)
	return p.Price
}
