package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CatalogSource interface {
	// ListProducts returns the catalog in display order
	ListProducts(ctx context.Context) ([]domain.Product, error)
}
