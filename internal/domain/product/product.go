package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item. Price and Discount are per-unit amounts;
// Quantity is the number of units currently in stock. The cart and checkout
// engines only ever read products, so catalog price changes never touch
// snapshots already taken.
type Product struct {
	ID        string
	Title     string
	Price     decimal.Decimal
	Discount  decimal.Decimal
	Quantity  int
	CreatedAt time.Time
}

// Repository defines the catalog read operations the cart and checkout
// engines depend on.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}
