package handler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

func TestViewState_RendersIntoFrame(t *testing.T) {
	v := NewViewState()
	assert.Equal(t, "0.00", v.Snapshot().Total)

	items := []domain.LineItem{{ProductID: "a", Name: "A", UnitPrice: decimal.NewFromInt(5), Quantity: 2, Subtotal: decimal.NewFromInt(10)}}
	v.RenderCart(items, domain.ComputeTotals(items))
	v.RenderStock([]domain.StockView{domain.NewStockView("a", 0)})
	v.ShowStatus("hello")

	f := v.Snapshot()
	assert.Equal(t, uint64(3), f.Version)
	assert.True(t, f.CheckoutEnabled)
	assert.Equal(t, "10.00", f.Total)
	assert.Equal(t, "hello", f.Status)
	require.Len(t, f.Stock, 1)
	assert.Equal(t, "Sold out", f.Stock[0].Label)

	v.RenderCart(nil, domain.Totals{})
	f = v.Snapshot()
	assert.False(t, f.CheckoutEnabled)
	assert.NotNil(t, f.Cart)
}

func TestViewState_Subscribe(t *testing.T) {
	v := NewViewState()
	frames, cancel := v.Subscribe()

	v.ShowStatus("one")
	got := <-frames
	assert.Equal(t, "one", got.Status)

	cancel()
	cancel()
	_, ok := <-frames
	assert.False(t, ok)

	// no subscribers left, must not block
	v.ShowStatus("two")
}

func TestViewState_SlowSubscriberDropsFrames(t *testing.T) {
	v := NewViewState()
	frames, cancel := v.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer*2; i++ {
		v.ShowStatus("tick")
	}
	assert.Len(t, frames, subscriberBuffer)
	assert.Equal(t, uint64(subscriberBuffer*2), v.Snapshot().Version)
}
