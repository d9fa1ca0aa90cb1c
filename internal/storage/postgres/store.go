// Package postgres implements the storage interfaces on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/NexaCommerce/commerce_layer/internal/domain/order"
	"github.com/NexaCommerce/commerce_layer/internal/domain/product"
	"github.com/NexaCommerce/commerce_layer/internal/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.ProductStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return New(db), nil
}

// DB exposes the underlying handle for migrations.
func (s *Store) DB() *sql.DB { return s.db.DB }

// --- ProductStore -----------------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return product.Product{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock_quantity = $5, updated_at = $6
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.UpdatedAt)
	if err != nil {
		return product.Product{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return product.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (product.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, stock_quantity, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id)

	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, storage.ErrNotFound
	}
	if err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]product.Product, error) {
	return s.queryProducts(ctx, `
		SELECT id, name, description, price, stock_quantity, created_at, updated_at
		FROM products
		ORDER BY created_at
	`)
}

func (s *Store) SearchProducts(ctx context.Context, name string) ([]product.Product, error) {
	return s.queryProducts(ctx, `
		SELECT id, name, description, price, stock_quantity, created_at, updated_at
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY created_at
	`, name)
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...interface{}) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// --- OrderStore -------------------------------------------------------------

// CreateOrder writes the order row and all item rows in one transaction.
// On any failure the transaction rolls back and nothing is visible.
func (s *Store) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	if len(o.Items) == 0 {
		return order.Order{}, fmt.Errorf("order must have at least one item")
	}

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	o.CreatedAt = now
	o.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return order.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, owner_id, owner_display_name, status, total_amount, order_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, o.ID, o.OwnerID, o.OwnerDisplayName, o.Status, o.TotalAmount, o.OrderDate, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return order.Order{}, err
	}

	for i, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, o.ID, i, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)
		if err != nil {
			return order.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, owner_display_name, status, total_amount, order_date, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, storage.ErrNotFound
	}
	if err != nil {
		return order.Order{}, err
	}

	items, err := s.orderItems(ctx, o.ID)
	if err != nil {
		return order.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (s *Store) ListOrdersByOwner(ctx context.Context, ownerID string) ([]order.Order, error) {
	return s.queryOrders(ctx, `
		SELECT id, owner_id, owner_display_name, status, total_amount, order_date, created_at, updated_at
		FROM orders
		WHERE owner_id = $1
		ORDER BY order_date DESC
	`, ownerID)
}

func (s *Store) ListOrders(ctx context.Context) ([]order.Order, error) {
	return s.queryOrders(ctx, `
		SELECT id, owner_id, owner_display_name, status, total_amount, order_date, created_at, updated_at
		FROM orders
		ORDER BY order_date DESC
	`)
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...interface{}) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := s.orderItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (s *Store) orderItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.OwnerID, &o.OwnerDisplayName, &o.Status, &o.TotalAmount,
		&o.OrderDate, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
