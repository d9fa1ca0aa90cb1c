// Package product defines the catalog aggregate.
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Price is decimal to keep money arithmetic
// exact.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
