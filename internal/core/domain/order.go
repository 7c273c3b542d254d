package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusRecorded  OrderStatus = "recorded"
)

// Order is the sale record produced by checkout. Stock for its lines has
// already been consumed and is never returned.
type Order struct {
	ID        string
	CartKey   string
	Lines     []LineItem
	ItemCount int
	Total     decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewOrder(cartKey string, lines []LineItem) Order {
	totals := ComputeTotals(lines)
	now := time.Now()
	return Order{
		ID:        uuid.New().String(),
		CartKey:   cartKey,
		Lines:     lines,
		ItemCount: totals.ItemCount,
		Total:     totals.GrandTotal,
		Status:    OrderStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
