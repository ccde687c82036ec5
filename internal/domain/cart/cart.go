package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a user has no cart yet. Carts are created
// lazily, so callers usually treat this the same as an empty cart.
var ErrNotFound = errors.New("cart not found")

// ProductNotFoundError indicates a cart mutation referenced a product that
// does not exist in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// ItemNotFoundError indicates the referenced cart line does not exist in the
// user's cart.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("cart item %s not found", e.ItemID)
}

// InsufficientStockError indicates the requested quantity exceeds the
// product's available stock. Nothing is persisted when it is returned.
type InsufficientStockError struct {
	ProductTitle string
	Available    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough %q in stock: %d available", e.ProductTitle, e.Available)
}

// Item is one product line in a cart. Price and Discount are per-unit
// snapshots taken from the catalog when the line was added or last touched;
// pricing sums these snapshots, never a live catalog join.
type Item struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
	Discount  decimal.Decimal
	Content   string
	UpdatedAt time.Time
}

// Cart is a user's in-progress order. The monetary fields from Subtotal down
// are derived state: only the Pricer writes them, and it runs after every
// line mutation. One cart per user, created lazily.
type Cart struct {
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

	Content   string
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item returns the line for the given product id, or nil.
func (c *Cart) Item(productID string) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// ItemByID returns the line with the given id, or nil.
func (c *Cart) ItemByID(id string) *Item {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// Repository defines persistence operations for carts and their lines.
type Repository interface {
	// GetByUserID loads the user's cart with all items, or ErrNotFound.
	GetByUserID(ctx context.Context, userID string) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	UpsertItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, itemID string) error
	// DeleteItems removes every line of the cart.
	DeleteItems(ctx context.Context, cartID string) error
	// UpdateTotals persists the derived monetary fields and promo code.
	UpdateTotals(ctx context.Context, c *Cart) error
}
