package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
)

func newRouter(f *fixture) *mux.Router {
	r := mux.NewRouter()
	NewHTTPHandler(f.cart, f.view, zap.NewNop()).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartHTTPResponse {
	t.Helper()
	var resp CartHTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHTTP_AddItem(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	rec := do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"cpu1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, rec)
	assert.True(t, resp.Success)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "cpu1", resp.Items[0].ProductID)
	assert.Equal(t, 1, resp.Totals.ItemCount)
	assert.Equal(t, "100.00", resp.Total)
}

func TestHTTP_AddItemSoldOut(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	rec := do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"gpu1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"gpu1"}`)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Contains(t, rec.Body.String(), "sold out")
	assert.Equal(t, 1, f.cart.Quantity("gpu1"))
}

func TestHTTP_AddItemBadRequests(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/cart/items", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/cart/items", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"ghost"}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, r, http.MethodGet, "/api/cart/items", "").Code)
}

func TestHTTP_RemoveItem(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"cpu1"}`)
	do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"cpu1"}`)

	rec := do(t, r, http.MethodDelete, "/api/cart/items/cpu1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Equal(t, 1, resp.Totals.ItemCount)

	rec = do(t, r, http.MethodDelete, "/api/cart/items/not-in-cart", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeCart(t, rec).Totals.ItemCount)
}

func TestHTTP_ClearNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"cpu1"}`)

	rec := do(t, r, http.MethodPost, "/api/cart/clear", `{"confirm":false}`)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Equal(t, 1, f.cart.Quantity("cpu1"))

	rec = do(t, r, http.MethodPost, "/api/cart/clear", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)

	stock, err := f.cart.Ledger().Query(context.Background(), "cpu1")
	require.NoError(t, err)
	assert.Equal(t, 10, stock)
}

func TestHTTP_EmptyBodyIsNotAConfirmation(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"cpu1"}`)

	for _, path := range []string{"/api/cart/clear", "/api/cart/checkout"} {
		rec := do(t, r, http.MethodPost, path, "")
		assert.Equal(t, http.StatusPreconditionRequired, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "confirmation required", path)
	}
	assert.Equal(t, 1, f.cart.Quantity("cpu1"))

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/api/cart/clear", `{"confirm":`).Code)
}

func TestHTTP_Checkout(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"gpu1"}`)

	rec := do(t, r, http.MethodPost, "/api/cart/checkout", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.NotEmpty(t, resp.OrderID)
	assert.Empty(t, resp.Items)

	stock, err := f.cart.Ledger().Query(context.Background(), "gpu1")
	require.NoError(t, err)
	assert.Equal(t, 0, stock)

	rec = do(t, r, http.MethodPost, "/api/cart/checkout", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cart is empty", decodeCart(t, rec).Message)
}

func TestHTTP_ProductsAndStock(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	rec := do(t, r, http.MethodGet, "/api/products?brand=nvidia", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []domain.CatalogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "gpu1", entries[0].Product.ID)

	rec = do(t, r, http.MethodGet, "/api/products?min_discount=15", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)

	rec = do(t, r, http.MethodGet, "/api/products?low=true", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Last 1 units", entries[0].Stock.Label)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/products?min_discount=x", "").Code)

	rec = do(t, r, http.MethodGet, "/api/stock", "")
	var views []domain.StockView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Len(t, views, 2)
}

func TestHTTP_ViewFollowsMutations(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	do(t, r, http.MethodPost, "/api/cart/items", `{"product_id":"gpu1"}`)

	rec := do(t, r, http.MethodGet, "/api/view", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var frame Frame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frame))
	assert.True(t, frame.CheckoutEnabled)
	assert.Equal(t, "300.00", frame.Total)
	assert.Equal(t, `"RTX 4070" added to cart`, frame.Status)
	require.Len(t, frame.Stock, 2)
	assert.False(t, frame.Stock[1].Purchasable)
}

func TestHTTP_Health(t *testing.T) {
	rec := do(t, newRouter(newFixture(t)), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHTTP_StreamPushesFrames(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(newRouter(f))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial Frame
	require.NoError(t, conn.ReadJSON(&initial))
	assert.False(t, initial.CheckoutEnabled)

	require.NoError(t, f.cart.AddItem(context.Background(), "cpu1", "Ryzen 5", f.mustPrice(t, "cpu1")))

	// the add produces several renders; read until the cart shows up
	for {
		var frame Frame
		require.NoError(t, conn.ReadJSON(&frame))
		if len(frame.Cart) == 1 {
			assert.Equal(t, "cpu1", frame.Cart[0].ProductID)
			break
		}
	}
}
