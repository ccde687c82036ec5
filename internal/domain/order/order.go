package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an order does not exist or belongs to
// another user.
var ErrNotFound = errors.New("order not found")

// Order statuses.
const (
	StatusPending   int16 = 0
	StatusSubmitted int16 = 1
)

// Order is the immutable record of a completed checkout. Its monetary
// fields are copied verbatim from the cart at checkout time and are never
// recomputed afterward.
type Order struct {
	ID     string
	UserID string
	Status int16

	Subtotal     decimal.Decimal
	ItemDiscount decimal.Decimal
	Tax          decimal.Decimal
	Shipping     decimal.Decimal
	Total        decimal.Decimal
	Promo        string
	Discount     decimal.Decimal
	GrandTotal   decimal.Decimal

	AddressID string
	Content   string
	Details   []Detail
	CreatedAt time.Time
}

// Detail is an immutable per-product snapshot copied from a cart line at
// checkout time, never re-read from the catalog, so historical orders are
// stable against later price changes.
type Detail struct {
	ID        string
	OrderID   string
	ProductID string
	Price     decimal.Decimal
	Discount  decimal.Decimal
	Quantity  int
	CreatedAt time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order together with its details.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}
