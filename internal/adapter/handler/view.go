package handler

import (
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
)

const subscriberBuffer = 16

// Frame is everything the storefront page needs to redraw itself.
type Frame struct {
	Version         uint64             `json:"version"`
	Cart            []domain.LineItem  `json:"cart"`
	Totals          domain.Totals      `json:"totals"`
	Total           string             `json:"total"`
	CheckoutEnabled bool               `json:"checkout_enabled"`
	Stock           []domain.StockView `json:"stock"`
	Status          string             `json:"status"`
}

// ViewState implements port.View by keeping the latest frame and pushing
// every change to subscribers. Slow subscribers miss frames; the next one
// carries the full state.
type ViewState struct {
	mu    sync.RWMutex
	frame Frame
	subs  map[chan Frame]struct{}
}

func NewViewState() *ViewState {
	return &ViewState{
		frame: Frame{Cart: []domain.LineItem{}, Stock: []domain.StockView{}, Total: "0.00"},
		subs:  make(map[chan Frame]struct{}),
	}
}

func (v *ViewState) RenderCart(items []domain.LineItem, totals domain.Totals) {
	if items == nil {
		items = []domain.LineItem{}
	}
	v.update(func(f *Frame) {
		f.Cart = items
		f.Totals = totals
		f.Total = totals.GrandTotal.StringFixed(2)
		f.CheckoutEnabled = len(items) > 0
	})
}

func (v *ViewState) RenderStock(views []domain.StockView) {
	if views == nil {
		views = []domain.StockView{}
	}
	v.update(func(f *Frame) {
		f.Stock = views
	})
}

func (v *ViewState) ShowStatus(message string) {
	v.update(func(f *Frame) {
		f.Status = message
	})
}

func (v *ViewState) Snapshot() Frame {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.frame
}

// Subscribe returns a channel of frames and a function that ends the subscription.
func (v *ViewState) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, subscriberBuffer)

	v.mu.Lock()
	v.subs[ch] = struct{}{}
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, ch)
			v.mu.Unlock()
			close(ch)
		})
	}
}

func (v *ViewState) update(apply func(*Frame)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	apply(&v.frame)
	v.frame.Version++

	for ch := range v.subs {
		select {
		case ch <- v.frame:
		default:
		}
	}
}
