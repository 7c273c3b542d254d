package storage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

func sampleCart() []domain.LineItem {
	return []domain.LineItem{
		{ProductID: "cpu1", Name: "Ryzen 5", UnitPrice: decimal.RequireFromString("100.00"), Quantity: 2, Subtotal: decimal.RequireFromString("200.00")},
		{ProductID: "gpu1", Name: "RTX 4070", UnitPrice: decimal.RequireFromString("299.99"), Quantity: 1, Subtotal: decimal.RequireFromString("299.99")},
	}
}

// assertSameCart compares id, quantity and price field by field.
func assertSameCart(t *testing.T, want, got []domain.LineItem) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ProductID, got[i].ProductID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice), "price of %s", want[i].ProductID)
		assert.True(t, want[i].Subtotal.Equal(got[i].Subtotal), "subtotal of %s", want[i].ProductID)
	}
}
