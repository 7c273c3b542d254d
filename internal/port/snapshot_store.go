package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

// SnapshotStore persists the cart under a single key, last write wins.
type SnapshotStore interface {
	SaveCart(ctx context.Context, items []domain.LineItem) error

	// LoadCart returns an empty slice when nothing was saved yet
	LoadCart(ctx context.Context) ([]domain.LineItem, error)
}
