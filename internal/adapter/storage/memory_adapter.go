package storage

import (
	"context"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
)

// MemoryStockAdapter keeps stock counters in process memory.
type MemoryStockAdapter struct {
	mu    sync.Mutex
	stock map[string]int
}

func NewMemoryStockAdapter() *MemoryStockAdapter {
	return &MemoryStockAdapter{stock: make(map[string]int)}
}

func (m *MemoryStockAdapter) AdjustStock(ctx context.Context, productID string, delta int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.stock[productID]
	if !ok || current+delta < 0 {
		return false, nil
	}
	m.stock[productID] = current + delta
	return true, nil
}

func (m *MemoryStockAdapter) GetStock(ctx context.Context, productID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stock, ok := m.stock[productID]
	return stock, ok, nil
}

func (m *MemoryStockAdapter) GetStocks(ctx context.Context, productIDs []string) (map[string]int, error) {
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

func (m *MemoryStockAdapter) SeedStock(ctx context.Context, productID string, quantity int, onlyIfAbsent bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stock[productID]; ok && onlyIfAbsent {
		return false, nil
	}
	m.stock[productID] = quantity
	return true, nil
}

// MemorySnapshotStore holds the last saved cart.
type MemorySnapshotStore struct {
	mu    sync.Mutex
	items []domain.LineItem
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

func (m *MemorySnapshotStore) SaveCart(ctx context.Context, items []domain.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append([]domain.LineItem(nil), items...)
	return nil
}

func (m *MemorySnapshotStore) LoadCart(ctx context.Context) ([]domain.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.LineItem{}, m.items...), nil
}

// MemoryOrderRepository collects recorded orders.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders []domain.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{}
}

func (m *MemoryOrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders = append(m.orders, order)
	return nil
}

func (m *MemoryOrderRepository) Orders() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.Order(nil), m.orders...)
}
