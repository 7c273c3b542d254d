package port

import "context"

type StockRepository interface {
	// AdjustStock atomically applies delta, returns false if the product is unknown or stock would go negative
	AdjustStock(ctx context.Context, productID string, delta int) (bool, error)

	// GetStock returns current stock, found is false for unknown products
	GetStock(ctx context.Context, productID string) (stock int, found bool, err error)

	// GetStocks returns stock for every known id in productIDs
	GetStocks(ctx context.Context, productIDs []string) (map[string]int, error)

	// SeedStock sets the initial stock, keeping an existing counter when onlyIfAbsent is set
	SeedStock(ctx context.Context, productID string, quantity int, onlyIfAbsent bool) (bool, error)
}
