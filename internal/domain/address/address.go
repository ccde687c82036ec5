package address

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested address does not exist or belongs
// to another user.
var ErrNotFound = errors.New("address not found")

// Address is a shipping destination owned by a user. Exactly one address per
// user may be the default; SetDefault flips the flag atomically.
type Address struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	Mobile    string
	Email     string
	Line1     string
	Line2     string
	City      string
	Province  string
	District  string
	Default   bool
}

// Repository defines persistence operations for addresses.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Address, error)
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	// FindDefault returns the user's current default address, or ErrNotFound.
	FindDefault(ctx context.Context, userID string) (*Address, error)
	SetDefaultFlag(ctx context.Context, id string, isDefault bool) error
	Create(ctx context.Context, a *Address) error
}
