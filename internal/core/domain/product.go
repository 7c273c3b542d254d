package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Price           decimal.Decimal `json:"price"`
	Stock           int             `json:"stock"` // initial allotment
	DiscountPercent int             `json:"discount"`
}

// ProductFilter narrows a catalog listing. Zero value matches everything.
type ProductFilter struct {
	LowStockOnly bool
	Brand        string
	MinDiscount  int // strictly greater than
}

// Match reports whether p passes the filter given its current stock.
func (f ProductFilter) Match(p Product, stock int) bool {
	if f.LowStockOnly && ClassifyStock(stock) != StockLevelLow {
		return false
	}
	if f.Brand != "" && !strings.Contains(strings.ToLower(p.Brand+" "+p.Name), strings.ToLower(f.Brand)) {
		return false
	}
	if f.MinDiscount > 0 && p.DiscountPercent <= f.MinDiscount {
		return false
	}
	return true
}

// CatalogEntry pairs a product with its current stock view.
type CatalogEntry struct {
	Product Product   `json:"product"`
	Stock   StockView `json:"stock"`
}
