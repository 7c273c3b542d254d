package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type HTTPHandler struct {
	cartService *service.CartService
	view        *ViewState
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

type AddItemHTTPRequest struct {
	ProductID string `json:"product_id"`
}

type ConfirmHTTPRequest struct {
	Confirm bool `json:"confirm"`
}

type CartHTTPResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Items   []domain.LineItem `json:"items"`
	Totals  domain.Totals     `json:"totals"`
	Total   string            `json:"total"`
	OrderID string            `json:"order_id,omitempty"`
}

type ErrorHTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewHTTPHandler(cartService *service.CartService, view *ViewState, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		cartService: cartService,
		view:        view,
		logger:      logger,
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/api/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/stock", h.GetStock).Methods(http.MethodGet)
	r.HandleFunc("/api/cart", h.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/api/cart/items", h.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/items/{productId}", h.RemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/api/cart/clear", h.Clear).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/checkout", h.Checkout).Methods(http.MethodPost)
	r.HandleFunc("/api/view", h.GetView).Methods(http.MethodGet)
	r.HandleFunc("/ws", h.Stream)
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Message: "invalid request body"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Message: "missing required fields"})
		return
	}

	product, err := h.cartService.Ledger().Product(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorHTTPResponse{Message: "unknown product"})
		return
	}

	err = h.cartService.AddItem(r.Context(), product.ID, product.Name, product.Price)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeCart(w, http.StatusOK, "item added", "")
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["productId"]

	if err := h.cartService.RemoveItem(r.Context(), productID); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeCart(w, http.StatusOK, "item removed", "")
}

func (h *HTTPHandler) Clear(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeConfirm(w, r)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), Answer(req.Confirm)); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeCart(w, http.StatusOK, "cart cleared", "")
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeConfirm(w, r)
	if !ok {
		return
	}

	order, err := h.cartService.Checkout(r.Context(), Answer(req.Confirm))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if order == nil {
		h.writeCart(w, http.StatusOK, "cart is empty", "")
		return
	}
	h.writeCart(w, http.StatusOK, "purchase completed", order.ID)
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK, "ok", "")
}

func (h *HTTPHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	views, err := h.cartService.Ledger().StockViews(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		LowStockOnly: q.Get("low") == "true",
		Brand:        q.Get("brand"),
	}
	if v := q.Get("min_discount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Message: "invalid min_discount"})
			return
		}
		filter.MinDiscount = n
	}

	entries, err := h.cartService.Ledger().Products(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *HTTPHandler) GetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.Snapshot())
}

// Stream pushes a frame over a websocket after every re-render.
func (h *HTTPHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	frames, cancel := h.view.Subscribe()
	defer cancel()

	// reader goroutine notices when the client goes away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(h.view.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeCart(w http.ResponseWriter, status int, message, orderID string) {
	items := h.cartService.Items()
	totals := domain.ComputeTotals(items)
	writeJSON(w, status, CartHTTPResponse{
		Success: true,
		Message: message,
		Items:   items,
		Totals:  totals,
		Total:   totals.GrandTotal.StringFixed(2),
		OrderID: orderID,
	})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		status = http.StatusGone
		message = "sold out"
	case errors.Is(err, domain.ErrUnknownProduct):
		status = http.StatusNotFound
		message = "unknown product"
	case errors.Is(err, domain.ErrDeclined):
		status = http.StatusPreconditionRequired
		message = "confirmation required"
	case errors.Is(err, domain.ErrInvalidPrice):
		status = http.StatusBadRequest
		message = "invalid price"
	case errors.Is(err, service.ErrServiceClosed):
		status = http.StatusServiceUnavailable
		message = "shutting down"
	default:
		h.logger.Error("request failed", zap.Error(err))
	}

	writeJSON(w, status, ErrorHTTPResponse{Success: false, Message: message})
}

// decodeConfirm reads a ConfirmHTTPRequest. An empty body means no
// confirmation was given.
func decodeConfirm(w http.ResponseWriter, r *http.Request) (ConfirmHTTPRequest, bool) {
	var req ConfirmHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Message: "invalid request body"})
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
