package port

import "github.com/rl1809/storefront/internal/core/domain"

// View is called after every mutation. Implementations must not call back
// into the cart service.
type View interface {
	RenderCart(items []domain.LineItem, totals domain.Totals)
	RenderStock(views []domain.StockView)
	ShowStatus(message string)
}
