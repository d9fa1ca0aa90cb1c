package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/NexaCommerce/commerce_layer/internal/domain/order"
	"github.com/NexaCommerce/commerce_layer/internal/domain/product"
	"github.com/NexaCommerce/commerce_layer/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateOrderCommitsOrderAndItems(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := store.CreateOrder(context.Background(), order.Order{
		OwnerID:          "user-123",
		OwnerDisplayName: "alice",
		Status:           order.StatusPending,
		TotalAmount:      decimal.RequireFromString("25.00"),
		Items: []order.Item{
			{ProductID: "p1", ProductName: "Mug", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: "p2", ProductName: "Shirt", Quantity: 1, UnitPrice: decimal.RequireFromString("15.00")},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated order id")
	}
	if created.OrderDate.IsZero() {
		t.Error("expected an assigned order date")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateOrderRollsBackOnItemFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(fmt.Errorf("constraint violation"))
	mock.ExpectRollback()

	_, err := store.CreateOrder(context.Background(), order.Order{
		OwnerID: "user-123",
		Items: []order.Item{
			{ProductID: "p1", ProductName: "Mug", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
		},
	})
	if err == nil {
		t.Fatal("expected item insert failure to surface")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .* FROM orders").
		WithArgs("no-such-id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "owner_display_name", "status", "total_amount",
			"order_date", "created_at", "updated_at",
		}))

	_, err := store.GetOrder(context.Background(), "no-such-id")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetOrderLoadsItemsInPosition(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .* FROM orders").
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "owner_display_name", "status", "total_amount",
			"order_date", "created_at", "updated_at",
		}).AddRow("ord-1", "user-123", "alice", "PENDING", "25.00", now, now, now))

	mock.ExpectQuery("SELECT .* FROM order_items").
		WithArgs("ord-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "product_name", "quantity", "unit_price"}).
			AddRow("p1", "Mug", 1, "10.00").
			AddRow("p2", "Shirt", 1, "15.00"))

	got, err := store.GetOrder(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].ProductName != "Mug" || got.Items[1].ProductName != "Shirt" {
		t.Fatalf("items = %+v", got.Items)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("total = %s", got.TotalAmount)
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM products").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.DeleteProduct(context.Background(), "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateProductInsertsRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := store.CreateProduct(context.Background(), product.Product{
		Name:          "Mug",
		Description:   "ceramic",
		Price:         decimal.RequireFromString("9.99"),
		StockQuantity: 3,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated product id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
