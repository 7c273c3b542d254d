package domain

import "github.com/shopspring/decimal"

// LineItem is one product's aggregated quantity within a cart.
type LineItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (li *LineItem) recompute() {
	li.Subtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Totals struct {
	ItemCount  int             `json:"item_count"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Cart keeps line items in insertion order, keyed by product id.
type Cart struct {
	items []*LineItem
	index map[string]*LineItem
}

func NewCart() *Cart {
	return &Cart{index: make(map[string]*LineItem)}
}

// Increment adds one unit of productID, creating the line with the given
// price snapshot on first add. Later prices are ignored.
func (c *Cart) Increment(productID, name string, price decimal.Decimal) LineItem {
	item, ok := c.index[productID]
	if !ok {
		item = &LineItem{ProductID: productID, Name: name, UnitPrice: price}
		c.items = append(c.items, item)
		c.index[productID] = item
	}
	item.Quantity++
	item.recompute()
	return *item
}

// Decrement removes one unit of productID and drops the line at zero.
// The returned item carries the remaining quantity.
func (c *Cart) Decrement(productID string) (LineItem, error) {
	item, ok := c.index[productID]
	if !ok {
		return LineItem{}, ErrNotInCart
	}

	item.Quantity--
	if item.Quantity <= 0 {
		c.remove(productID)
		return LineItem{ProductID: item.ProductID, Name: item.Name, UnitPrice: item.UnitPrice, Subtotal: decimal.Zero}, nil
	}
	item.recompute()
	return *item, nil
}

// Delete drops the whole line for productID.
func (c *Cart) Delete(productID string) (LineItem, bool) {
	item, ok := c.index[productID]
	if !ok {
		return LineItem{}, false
	}
	c.remove(productID)
	return *item, true
}

func (c *Cart) remove(productID string) {
	delete(c.index, productID)
	for i, it := range c.items {
		if it.ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Get(productID string) (LineItem, bool) {
	item, ok := c.index[productID]
	if !ok {
		return LineItem{}, false
	}
	return *item, true
}

// Quantity returns the units of productID held in the cart, 0 if absent.
func (c *Cart) Quantity(productID string) int {
	if item, ok := c.index[productID]; ok {
		return item.Quantity
	}
	return 0
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, *it)
	}
	return out
}

func (c *Cart) Reset() {
	c.items = nil
	c.index = make(map[string]*LineItem)
}

// Replace swaps the cart contents for items, merging duplicate ids and
// skipping non-positive quantities. Subtotals are recomputed.
func (c *Cart) Replace(items []LineItem) {
	c.Reset()
	for _, it := range items {
		if it.Quantity <= 0 || it.ProductID == "" {
			continue
		}
		if existing, ok := c.index[it.ProductID]; ok {
			existing.Quantity += it.Quantity
			existing.recompute()
			continue
		}
		item := it
		item.recompute()
		c.items = append(c.items, &item)
		c.index[item.ProductID] = &item
	}
}

func (c *Cart) Totals() Totals {
	return ComputeTotals(c.Items())
}

// ComputeTotals sums quantities and subtotals; the grand total is rounded to 2 decimals.
func ComputeTotals(items []LineItem) Totals {
	t := Totals{GrandTotal: decimal.Zero}
	for _, it := range items {
		t.ItemCount += it.Quantity
		t.GrandTotal = t.GrandTotal.Add(it.Subtotal)
	}
	t.GrandTotal = t.GrandTotal.Round(2)
	return t
}
