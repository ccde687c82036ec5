package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no coupon exists for a code.
	ErrNotFound = errors.New("coupon not found")
	// ErrInvalid is returned when a coupon exists but is disabled or
	// outside its validity window.
	ErrInvalid = errors.New("coupon not valid")
)

// Rule is a code-activated discount. Value is a multiplier applied to the
// cart's item discount total, NOT the subtotal, and MaxValue caps the
// resulting amount. A background sweep flips Enabled as the validity window
// opens and closes; the engines always re-read Enabled at use time.
type Rule struct {
	ID          string
	Code        string
	Description string
	Value       decimal.Decimal
	MaxValue    decimal.Decimal
	Enabled     bool
	ValidFrom   time.Time
	ValidUntil  time.Time
	CreatedAt   time.Time
}

// DiscountFor computes the coupon discount for a cart whose per-item
// discounts sum to itemDiscount: min(MaxValue, Value × itemDiscount).
func (r *Rule) DiscountFor(itemDiscount decimal.Decimal) decimal.Decimal {
	return decimal.Min(r.MaxValue, r.Value.Mul(itemDiscount))
}

// ActiveAt reports whether the rule is enabled and t falls inside its
// validity window.
func (r *Rule) ActiveAt(t time.Time) bool {
	return r.Enabled && !t.Before(r.ValidFrom) && !t.After(r.ValidUntil)
}

// Repository provides coupon rule lookup by code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
}
