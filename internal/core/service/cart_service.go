package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const currencySymbol = "S/"

var ErrServiceClosed = errors.New("cart service closed")

// CartService owns one cart and keeps it consistent with the stock ledger.
// Every operation runs as a single critical section: the ledger adjustment,
// the cart mutation, persistence and rendering never interleave with another
// operation on the same cart.
type CartService struct {
	key    string
	ledger *StockLedger
	store  port.SnapshotStore
	view   port.View
	logger *zap.Logger

	mu         sync.Mutex
	cart       *domain.Cart
	orderQueue chan domain.Order
	closed     bool
}

func NewCartService(key string, ledger *StockLedger, store port.SnapshotStore, view port.View, queueSize int, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		key:        key,
		ledger:     ledger,
		store:      store,
		view:       view,
		logger:     logger.With(zap.String("cart", key)),
		cart:       domain.NewCart(),
		orderQueue: make(chan domain.Order, queueSize),
	}
}

// Restore loads the persisted snapshot. The loaded lines are not checked
// against the ledger and their units are not reserved again.
func (s *CartService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.LoadCart(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	s.cart.Replace(items)
	s.commit(ctx)
	s.ledger.Refresh(ctx)
	s.status("Store loaded")

	s.logger.Info("cart restored", zap.Int("lines", s.cart.Len()))
	return nil
}

// AddItem reserves one unit of productID and adds it to the cart.
func (s *CartService) AddItem(ctx context.Context, productID, name string, price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Adjust(ctx, productID, -1); err != nil {
		if errors.Is(err, domain.ErrOutOfStock) {
			s.status(fmt.Sprintf("Out of stock: %s", name))
		}
		return err
	}

	item := s.cart.Increment(productID, name, price)
	s.commit(ctx)
	s.status(fmt.Sprintf("%q added to cart", name))

	s.logger.Info("item added",
		zap.String("product_id", productID),
		zap.Int("quantity", item.Quantity),
	)
	return nil
}

// RemoveItem returns one unit of productID to the ledger. It is a no-op when
// the product is not in the cart.
func (s *CartService) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cart.Get(productID)
	if !ok {
		return nil
	}

	if err := s.ledger.Adjust(ctx, productID, 1); err != nil {
		return fmt.Errorf("return stock: %w", err)
	}

	item, err := s.cart.Decrement(productID)
	if err != nil {
		return err
	}
	s.commit(ctx)
	s.status(fmt.Sprintf("%q removed from cart", item.Name))

	s.logger.Info("item removed",
		zap.String("product_id", productID),
		zap.Int("quantity", item.Quantity),
	)
	return nil
}

// Clear returns every reserved unit to the ledger and empties the cart once
// the user confirms. Lines for products no longer in the catalog are dropped.
// Declining returns domain.ErrDeclined and changes nothing.
func (s *CartService) Clear(ctx context.Context, confirm port.Confirmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.IsEmpty() {
		return nil
	}

	if err := s.ask(ctx, confirm, "Empty the cart?"); err != nil {
		return err
	}

	for _, item := range s.cart.Items() {
		err := s.ledger.Adjust(ctx, item.ProductID, item.Quantity)
		switch {
		case errors.Is(err, domain.ErrUnknownProduct):
			// delisted since the snapshot was saved, nothing to give back
			s.logger.Warn("dropping line for unknown product",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
			)
		case err != nil:
			// lines already returned are gone from the cart, keep them in sync
			s.commit(ctx)
			return fmt.Errorf("return stock %s: %w", item.ProductID, err)
		}
		s.cart.Delete(item.ProductID)
	}

	s.cart.Reset()
	s.commit(ctx)
	s.status("Cart cleared")

	s.logger.Info("cart cleared")
	return nil
}

// Checkout finalizes the sale once the user confirms: the cart is emptied and
// reserved stock is NOT returned. The order is queued for recording when the
// queue has room.
// It returns nil, nil for an empty cart.
func (s *CartService) Checkout(ctx context.Context, confirm port.Confirmer) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrServiceClosed
	}
	if s.cart.IsEmpty() {
		return nil, nil
	}

	totals := s.cart.Totals()
	prompt := fmt.Sprintf("Total to pay: %s%s\nContinue?", currencySymbol, totals.GrandTotal.StringFixed(2))
	if err := s.ask(ctx, confirm, prompt); err != nil {
		return nil, err
	}

	// the sale log is best effort, a full queue never holds up the cart
	order := domain.NewOrder(s.key, s.cart.Items())
	select {
	case s.orderQueue <- order:
	default:
		s.logger.Warn("order queue full, order not recorded", zap.String("order_id", order.ID))
	}

	s.cart.Reset()
	s.commit(ctx)
	s.status("Purchase completed")

	s.logger.Info("checkout completed",
		zap.String("order_id", order.ID),
		zap.Int("items", order.ItemCount),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return &order, nil
}

func (s *CartService) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Totals()
}

func (s *CartService) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

// Quantity returns the units of productID currently in the cart.
func (s *CartService) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Quantity(productID)
}

func (s *CartService) Ledger() *StockLedger {
	return s.ledger
}

func (s *CartService) GetOrderQueue() <-chan domain.Order {
	return s.orderQueue
}

func (s *CartService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.orderQueue)
}

func (s *CartService) ask(ctx context.Context, confirm port.Confirmer, prompt string) error {
	if confirm == nil {
		return domain.ErrDeclined
	}
	ok, err := confirm.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return domain.ErrDeclined
	}
	return nil
}

// commit persists the cart and re-renders it. Persistence failures are
// logged and never undo the mutation.
func (s *CartService) commit(ctx context.Context) {
	items := s.cart.Items()
	if err := s.store.SaveCart(ctx, items); err != nil {
		s.logger.Warn("failed to save cart snapshot", zap.Error(err))
	}
	if s.view != nil {
		s.view.RenderCart(items, domain.ComputeTotals(items))
	}
}

func (s *CartService) status(msg string) {
	if s.view != nil {
		s.view.ShowStatus(msg)
	}
}
