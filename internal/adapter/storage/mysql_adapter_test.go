package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := NewMySQLAdapter(db).InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema failed: %v", err)
	}

	return db
}

func TestListProducts(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	// Setup
	_, err := db.ExecContext(ctx, `
		INSERT INTO products (id, name, brand, price, stock, discount, position)
		VALUES ('test-cpu', 'Test CPU', 'AMD', 100.00, 12, 10, -2), ('test-gpu', 'Test GPU', 'NVIDIA', 599.90, 3, 20, -1)
		ON DUPLICATE KEY UPDATE price = VALUES(price), stock = VALUES(stock), position = VALUES(position)`)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM products WHERE id IN ('test-cpu', 'test-gpu')`)

	products, err := adapter.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}

	if len(products) < 2 {
		t.Fatalf("expected at least 2 products, got %d", len(products))
	}
	if products[0].ID != "test-cpu" || products[1].ID != "test-gpu" {
		t.Errorf("expected position order, got %s, %s", products[0].ID, products[1].ID)
	}
	if !products[1].Price.Equal(decimal.RequireFromString("599.90")) {
		t.Errorf("expected price 599.90, got %s", products[1].Price)
	}
	if products[1].Stock != 3 {
		t.Errorf("expected stock 3, got %d", products[1].Stock)
	}
}

func TestCreateOrder_WithLines(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	order := domain.NewOrder("test-session", sampleCart())

	if err := adapter.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, order.ID)

	// Verify order exists
	var itemCount int
	db.QueryRowContext(ctx, `SELECT item_count FROM orders WHERE id = ?`, order.ID).Scan(&itemCount)
	if itemCount != 3 {
		t.Errorf("expected item_count 3, got %d", itemCount)
	}

	var lines int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_lines WHERE order_id = ?`, order.ID).Scan(&lines)
	if lines != 2 {
		t.Errorf("expected 2 order lines, got %d", lines)
	}
}

func TestCreateOrder_DuplicateRollsBack(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	order := domain.NewOrder("test-session", sampleCart())
	if err := adapter.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, order.ID)

	if err := adapter.CreateOrder(ctx, order); err == nil {
		t.Error("expected error for duplicate order id")
	}
}

func TestMySQLSnapshotStore_RoundTrip(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewMySQLSnapshotStore(db, "test-session")
	db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE cart_key = 'test-session'`)

	items, err := store.LoadCart(ctx)
	if err != nil {
		t.Fatalf("LoadCart failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(items))
	}

	saved := sampleCart()
	if err := store.SaveCart(ctx, saved); err != nil {
		t.Fatalf("SaveCart failed: %v", err)
	}
	// second save overwrites
	if err := store.SaveCart(ctx, saved[:1]); err != nil {
		t.Fatalf("SaveCart failed: %v", err)
	}

	loaded, err := store.LoadCart(ctx)
	if err != nil {
		t.Fatalf("LoadCart failed: %v", err)
	}
	assertSameCart(t, saved[:1], loaded)
}
