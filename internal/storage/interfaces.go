// Package storage defines persistence interfaces for the commerce domain.
package storage

import (
	"context"
	"errors"

	"github.com/NexaCommerce/commerce_layer/internal/domain/order"
	"github.com/NexaCommerce/commerce_layer/internal/domain/product"
)

// ErrNotFound reports an absent record. Both store implementations return it
// so callers do not depend on driver error types.
var ErrNotFound = errors.New("record not found")

// ProductStore persists catalog entries.
type ProductStore interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (product.Product, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	SearchProducts(ctx context.Context, name string) ([]product.Product, error)
}

// OrderStore persists order aggregates. CreateOrder writes the order and all
// of its items as a single atomic unit; on failure nothing is visible.
type OrderStore interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	GetOrder(ctx context.Context, id string) (order.Order, error)
	ListOrdersByOwner(ctx context.Context, ownerID string) ([]order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
}
