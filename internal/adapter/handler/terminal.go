package handler

import (
	"fmt"
	"io"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
)

// TerminalView prints renders as plain text lines.
type TerminalView struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminalView(out io.Writer) *TerminalView {
	return &TerminalView{out: out}
}

func (t *TerminalView) RenderCart(items []domain.LineItem, totals domain.Totals) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(items) == 0 {
		fmt.Fprintln(t.out, "  cart is empty")
	}
	for _, it := range items {
		fmt.Fprintf(t.out, "  %-24s x%-3d S/%s\n", it.Name, it.Quantity, it.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(t.out, "  items: %d  total: S/%s\n", totals.ItemCount, totals.GrandTotal.StringFixed(2))
}

func (t *TerminalView) RenderStock(views []domain.StockView) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, v := range views {
		if v.Level == domain.StockLevelNormal {
			continue
		}
		fmt.Fprintf(t.out, "  [%s] %s\n", v.ProductID, v.Label)
	}
}

func (t *TerminalView) ShowStatus(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "> %s\n", message)
}

// PrintCatalog lists every product with its stock label.
func (t *TerminalView) PrintCatalog(entries []domain.CatalogEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range entries {
		fmt.Fprintf(t.out, "  %-8s %-24s S/%-10s %s\n", e.Product.ID, e.Product.Name, e.Product.Price.StringFixed(2), e.Stock.Label)
	}
}
