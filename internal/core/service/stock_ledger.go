package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// StockLedger is the single source of truth for remaining sellable units.
// Counters live in the repository; the ledger keeps the catalog and the
// original allotment of every registered product.
type StockLedger struct {
	repo   port.StockRepository
	view   port.View
	logger *zap.Logger

	mu       sync.RWMutex
	order    []string
	products map[string]domain.Product
}

func NewStockLedger(repo port.StockRepository, view port.View, logger *zap.Logger) *StockLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockLedger{
		repo:     repo,
		view:     view,
		logger:   logger,
		products: make(map[string]domain.Product),
	}
}

// Register seeds stock for every product and renders the initial stock views.
// With onlyIfAbsent, counters that already exist in the repository are kept.
func (l *StockLedger) Register(ctx context.Context, products []domain.Product, onlyIfAbsent bool) error {
	for _, p := range products {
		if p.ID == "" {
			return fmt.Errorf("register product %q: empty id", p.Name)
		}
		if p.Stock < 0 {
			return fmt.Errorf("register product %s: negative stock %d", p.ID, p.Stock)
		}
		if p.Price.IsNegative() {
			return fmt.Errorf("register product %s: %w", p.ID, domain.ErrInvalidPrice)
		}
	}

	for _, p := range products {
		seeded, err := l.repo.SeedStock(ctx, p.ID, p.Stock, onlyIfAbsent)
		if err != nil {
			return fmt.Errorf("seed stock %s: %w", p.ID, err)
		}
		if !seeded {
			l.logger.Info("kept existing stock counter", zap.String("product_id", p.ID))
		}

		l.mu.Lock()
		if _, exists := l.products[p.ID]; !exists {
			l.order = append(l.order, p.ID)
		}
		l.products[p.ID] = p
		l.mu.Unlock()
	}

	l.logger.Info("catalog registered", zap.Int("products", len(products)))
	l.Refresh(ctx)
	return nil
}

// Adjust applies delta to the product's stock. Negative consumes, positive
// returns. Nothing changes on error.
func (l *StockLedger) Adjust(ctx context.Context, productID string, delta int) error {
	p, ok := l.lookup(productID)
	if !ok {
		return domain.ErrUnknownProduct
	}

	if delta > 0 {
		l.checkReturn(ctx, p, delta)
	}

	ok, err := l.repo.AdjustStock(ctx, productID, delta)
	if err != nil {
		return fmt.Errorf("adjust stock %s: %w", productID, err)
	}
	if !ok {
		_, found, err := l.repo.GetStock(ctx, productID)
		if err != nil {
			return fmt.Errorf("query stock %s: %w", productID, err)
		}
		if !found {
			return domain.ErrUnknownProduct
		}
		return domain.ErrOutOfStock
	}

	l.Refresh(ctx)
	return nil
}

// checkReturn flags returns that would lift stock above the original
// allotment. The return still goes through.
func (l *StockLedger) checkReturn(ctx context.Context, p domain.Product, delta int) {
	current, found, err := l.repo.GetStock(ctx, p.ID)
	if err != nil || !found {
		return
	}
	if current+delta > p.Stock {
		l.logger.Warn("stock return exceeds original allotment",
			zap.String("product_id", p.ID),
			zap.Int("stock", current),
			zap.Int("delta", delta),
			zap.Int("original", p.Stock),
		)
	}
}

func (l *StockLedger) Query(ctx context.Context, productID string) (int, error) {
	if _, ok := l.lookup(productID); !ok {
		return 0, domain.ErrUnknownProduct
	}

	stock, found, err := l.repo.GetStock(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("query stock %s: %w", productID, err)
	}
	if !found {
		return 0, domain.ErrUnknownProduct
	}
	return stock, nil
}

func (l *StockLedger) Product(productID string) (domain.Product, error) {
	p, ok := l.lookup(productID)
	if !ok {
		return domain.Product{}, domain.ErrUnknownProduct
	}
	return p, nil
}

// Original returns the allotment the product was registered with.
func (l *StockLedger) Original(productID string) (int, error) {
	p, err := l.Product(productID)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// Products lists the catalog in registration order with current stock views.
func (l *StockLedger) Products(ctx context.Context, filter domain.ProductFilter) ([]domain.CatalogEntry, error) {
	products := l.catalog()
	stocks, err := l.repo.GetStocks(ctx, ids(products))
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}

	entries := make([]domain.CatalogEntry, 0, len(products))
	for _, p := range products {
		stock := stocks[p.ID]
		if !filter.Match(p, stock) {
			continue
		}
		entries = append(entries, domain.CatalogEntry{Product: p, Stock: domain.NewStockView(p.ID, stock)})
	}
	return entries, nil
}

// StockViews recomputes the display state of every product from the repository.
func (l *StockLedger) StockViews(ctx context.Context) ([]domain.StockView, error) {
	products := l.catalog()
	stocks, err := l.repo.GetStocks(ctx, ids(products))
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}

	views := make([]domain.StockView, 0, len(products))
	for _, p := range products {
		views = append(views, domain.NewStockView(p.ID, stocks[p.ID]))
	}
	return views, nil
}

// Refresh re-renders the stock views of all products.
func (l *StockLedger) Refresh(ctx context.Context) {
	if l.view == nil {
		return
	}
	views, err := l.StockViews(ctx)
	if err != nil {
		l.logger.Error("failed to refresh stock views", zap.Error(err))
		return
	}
	l.view.RenderStock(views)
}

func (l *StockLedger) lookup(productID string) (domain.Product, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.products[productID]
	return p, ok
}

func (l *StockLedger) catalog() []domain.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Product, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.products[id])
	}
	return out
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
