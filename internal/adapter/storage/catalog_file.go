package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/rl1809/storefront/internal/core/domain"
)

type catalogDocument struct {
	Products []productRecord `yaml:"products"`
}

type productRecord struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Brand    string `yaml:"brand,omitempty"`
	Price    string `yaml:"price"`
	Stock    int    `yaml:"stock"`
	Discount int    `yaml:"discount,omitempty"`
}

// YAMLCatalog reads the product catalog from a YAML document of the form
//
//	products:
//	  - id: cpu1
//	    name: Ryzen 5 5600X
//	    brand: AMD
//	    price: "100.00"
//	    stock: 12
//	    discount: 10
type YAMLCatalog struct {
	path string
}

func NewYAMLCatalog(path string) *YAMLCatalog {
	return &YAMLCatalog{path: path}
}

func (c *YAMLCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) ([]domain.Product, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Products))
	products := make([]domain.Product, 0, len(doc.Products))
	for i, rec := range doc.Products {
		if rec.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %s", i, rec.ID)
		}
		seen[rec.ID] = true

		price, err := decimal.NewFromString(rec.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s: price %q: %w", rec.ID, rec.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("catalog entry %s: %w", rec.ID, domain.ErrInvalidPrice)
		}
		if rec.Stock < 0 {
			return nil, fmt.Errorf("catalog entry %s: negative stock", rec.ID)
		}

		products = append(products, domain.Product{
			ID:              rec.ID,
			Name:            rec.Name,
			Brand:           rec.Brand,
			Price:           price,
			Stock:           rec.Stock,
			DiscountPercent: rec.Discount,
		})
	}
	return products, nil
}
