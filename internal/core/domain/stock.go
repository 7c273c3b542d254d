package domain

import "fmt"

// LowStockThreshold is the highest stock still flagged as low.
const LowStockThreshold = 5

type StockLevel string

const (
	StockLevelOut    StockLevel = "out"
	StockLevelLow    StockLevel = "low"
	StockLevelNormal StockLevel = "normal"
)

// StockView is the display state derived from a product's stock. It is never stored.
type StockView struct {
	ProductID   string     `json:"product_id"`
	Stock       int        `json:"stock"`
	Level       StockLevel `json:"level"`
	Label       string     `json:"label"`
	Purchasable bool       `json:"purchasable"`
}

func ClassifyStock(stock int) StockLevel {
	switch {
	case stock <= 0:
		return StockLevelOut
	case stock <= LowStockThreshold:
		return StockLevelLow
	default:
		return StockLevelNormal
	}
}

func NewStockView(productID string, stock int) StockView {
	level := ClassifyStock(stock)

	var label string
	switch level {
	case StockLevelOut:
		label = "Sold out"
	case StockLevelLow:
		label = fmt.Sprintf("Last %d units", stock)
	default:
		label = fmt.Sprintf("In stock (%d)", stock)
	}

	return StockView{
		ProductID:   productID,
		Stock:       stock,
		Level:       level,
		Label:       label,
		Purchasable: level != StockLevelOut,
	}
}
