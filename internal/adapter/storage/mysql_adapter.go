package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		brand VARCHAR(128) NOT NULL DEFAULT '',
		price DECIMAL(12,2) NOT NULL,
		stock INT NOT NULL,
		discount INT NOT NULL DEFAULT 0,
		position INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id CHAR(36) PRIMARY KEY,
		cart_key VARCHAR(128) NOT NULL,
		item_count INT NOT NULL,
		total DECIMAL(12,2) NOT NULL,
		status VARCHAR(32) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		INDEX idx_cart_key (cart_key)
	)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		order_id CHAR(36) NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		unit_price DECIMAL(12,2) NOT NULL,
		quantity INT NOT NULL,
		subtotal DECIMAL(12,2) NOT NULL,
		PRIMARY KEY (order_id, product_id),
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS cart_snapshots (
		cart_key VARCHAR(128) PRIMARY KEY,
		items JSON NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
}

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// InitSchema creates the tables if they don't exist.
func (m *MySQLAdapter) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, brand, price, stock, discount
		FROM products ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &p.Stock, &p.DiscountPercent); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, cart_key, item_count, total, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.CartKey, order.ItemCount, order.Total, order.Status,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, name, unit_price, quantity, subtotal)
			VALUES (?, ?, ?, ?, ?, ?)`,
			order.ID, line.ProductID, line.Name, line.UnitPrice, line.Quantity, line.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert order line %s: %w", line.ProductID, err)
		}
	}

	return tx.Commit()
}

// MySQLSnapshotStore keeps one JSON snapshot row per cart key.
type MySQLSnapshotStore struct {
	db  *sql.DB
	key string
}

func NewMySQLSnapshotStore(db *sql.DB, cartKey string) *MySQLSnapshotStore {
	return &MySQLSnapshotStore{db: db, key: cartKey}
}

func (m *MySQLSnapshotStore) SaveCart(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (cart_key, items) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE items = VALUES(items)`,
		m.key, data,
	)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (m *MySQLSnapshotStore) LoadCart(ctx context.Context) ([]domain.LineItem, error) {
	var data []byte
	err := m.db.QueryRowContext(ctx, `
		SELECT items FROM cart_snapshots WHERE cart_key = ?`, m.key,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return []domain.LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	items := []domain.LineItem{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return items, nil
}
