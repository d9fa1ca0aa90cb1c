// Package order defines the order aggregate.
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. Only PENDING is assigned at
// creation; later transitions are driven elsewhere.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// Line is a caller-supplied (product, quantity) request pair, pre-validation.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Item is a committed order line. Name and unit price are copied from the
// catalog at order time; later catalog changes do not affect it.
type Item struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal returns unit price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the persisted aggregate. TotalAmount always equals the recomputed
// sum of its items, and an order is never persisted with zero items.
type Order struct {
	ID               string
	OwnerID          string
	OwnerDisplayName string
	Status           Status
	Items            []Item
	TotalAmount      decimal.Decimal
	OrderDate        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ComputeTotal sums the item subtotals.
func (o Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
