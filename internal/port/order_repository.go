package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrder persists a checked out order with its lines
	CreateOrder(ctx context.Context, order domain.Order) error
}
