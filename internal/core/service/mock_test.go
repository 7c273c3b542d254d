package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// Mock StockRepository
type mockStockRepo struct {
	stock map[string]int
	mu    sync.Mutex
	err   error
	// failID limits err to one product when set
	failID string
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{stock: make(map[string]int)}
}

func (m *mockStockRepo) AdjustStock(ctx context.Context, productID string, delta int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil && (m.failID == "" || m.failID == productID) {
		return false, m.err
	}
	current, ok := m.stock[productID]
	if !ok || current+delta < 0 {
		return false, nil
	}
	m.stock[productID] = current + delta
	return true, nil
}

func (m *mockStockRepo) GetStock(ctx context.Context, productID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stock, ok := m.stock[productID]
	return stock, ok, nil
}

func (m *mockStockRepo) GetStocks(ctx context.Context, productIDs []string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(productIDs))
	for _, id := range productIDs {
		if stock, ok := m.stock[id]; ok {
			out[id] = stock
		}
	}
	return out, nil
}

func (m *mockStockRepo) SeedStock(ctx context.Context, productID string, quantity int, onlyIfAbsent bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stock[productID]; ok && onlyIfAbsent {
		return false, nil
	}
	m.stock[productID] = quantity
	return true, nil
}

func (m *mockStockRepo) get(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[productID]
}

// Mock SnapshotStore
type mockSnapshotStore struct {
	items []domain.LineItem
	saves int
	err   error
	mu    sync.Mutex
}

func (m *mockSnapshotStore) SaveCart(ctx context.Context, items []domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.items = append([]domain.LineItem(nil), items...)
	return nil
}

func (m *mockSnapshotStore) LoadCart(ctx context.Context) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.LineItem{}, m.items...), nil
}

func (m *mockSnapshotStore) snapshot() []domain.LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items
}

// Recording View
type recordingView struct {
	mu       sync.Mutex
	cart     []domain.LineItem
	totals   domain.Totals
	stock    []domain.StockView
	statuses []string
	renders  int
}

func (v *recordingView) RenderCart(items []domain.LineItem, totals domain.Totals) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cart = items
	v.totals = totals
	v.renders++
}

func (v *recordingView) RenderStock(views []domain.StockView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stock = views
}

func (v *recordingView) ShowStatus(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statuses = append(v.statuses, message)
}

func (v *recordingView) lastStatus() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.statuses) == 0 {
		return ""
	}
	return v.statuses[len(v.statuses)-1]
}

func (v *recordingView) stockOf(productID string) (domain.StockView, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, sv := range v.stock {
		if sv.ProductID == productID {
			return sv, true
		}
	}
	return domain.StockView{}, false
}

// Mock OrderRepository
type mockOrderRepo struct {
	mu     sync.Mutex
	orders []domain.Order
	fail   bool
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("database unavailable")
	}
	m.orders = append(m.orders, order)
	return nil
}

func yes(ctx context.Context, prompt string) (bool, error) { return true, nil }
func no(ctx context.Context, prompt string) (bool, error)  { return false, nil }

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: "cpu1", Name: "Ryzen 5", Brand: "AMD", Price: price("100.00"), Stock: 10},
		{ID: "gpu1", Name: "RTX 4070", Brand: "NVIDIA", Price: price("300.00"), Stock: 3, DiscountPercent: 20},
		{ID: "ssd1", Name: "NVMe 1TB", Brand: "Kingston", Price: price("80.50"), Stock: 1},
	}
}
