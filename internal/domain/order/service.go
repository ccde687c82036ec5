package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/bookcart/internal/domain/address"
	"github.com/xenking/bookcart/internal/domain/cart"
	"github.com/xenking/bookcart/internal/domain/coupon"
	"github.com/xenking/bookcart/internal/domain/product"
	"github.com/xenking/bookcart/internal/domain/tx"
)

// ErrEmptyCart is returned when checkout is attempted on a cart with no
// items. No order row is ever created for it.
var ErrEmptyCart = errors.New("cart is empty")

// ProductNotFoundError indicates a cart line references a product that no
// longer exists. Returned from inside the checkout transaction, it rolls
// back the entire order.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// Service is the checkout engine: it converts a priced cart into an
// immutable order inside a single transaction.
type Service struct {
	addresses address.Repository
	products  product.Repository
	coupons   coupon.Repository
	carts     cart.Repository
	orders    Repository
	txm       tx.Manager
	pricer    cart.Pricer
	now       func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(
	addresses address.Repository,
	products product.Repository,
	coupons coupon.Repository,
	carts cart.Repository,
	orders Repository,
	txm tx.Manager,
	pricer cart.Pricer,
) *Service {
	return &Service{
		addresses: addresses,
		products:  products,
		coupons:   coupons,
		carts:     carts,
		orders:    orders,
		txm:       txm,
		pricer:    pricer,
		now:       time.Now,
	}
}

// CheckoutRequest holds the input for converting the user's cart into an
// order. CouponCode is the code the client believes is applied to the cart;
// a code that resolves to a disabled coupon fails the checkout, while an
// unknown code passes through (the cart's own discount already reflects it
// or not).
type CheckoutRequest struct {
	UserID     string
	AddressID  string
	CouponCode string
	Content    string
}

// Checkout validates the request, then atomically snapshots the cart into a
// new order: the order row copies the cart's derived totals verbatim, each
// detail row copies a line's price/discount/quantity snapshot, every
// referenced product is re-checked for existence, and the cart is emptied
// and repriced to its zero state. Any failure inside the transaction rolls
// everything back; no partial order is ever committed.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if _, err := s.addresses.GetByID(ctx, req.AddressID); err != nil {
		if errors.Is(err, address.ErrNotFound) {
			return nil, address.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get address %s", req.AddressID)
	}

	c, err := s.carts.GetByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, errors.Wrap(err, "get cart")
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if req.CouponCode != "" {
		rule, err := s.coupons.FindByCode(ctx, req.CouponCode)
		switch {
		case err == nil:
			if !rule.Enabled {
				return nil, coupon.ErrInvalid
			}
		case errors.Is(err, coupon.ErrNotFound):
			// Unknown codes pass; the cart's discount already ignores them.
		default:
			return nil, errors.Wrapf(err, "find coupon %q", req.CouponCode)
		}
	}

	o := &Order{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		Status:       StatusSubmitted,
		Subtotal:     c.Subtotal,
		ItemDiscount: c.ItemDiscount,
		Tax:          c.Tax,
		Shipping:     c.Shipping,
		Total:        c.Total,
		Promo:        c.Promo,
		Discount:     c.Discount,
		GrandTotal:   c.GrandTotal,
		AddressID:    req.AddressID,
		Content:      req.Content,
		CreatedAt:    s.now(),
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		details := make([]Detail, 0, len(c.Items))
		for i := range c.Items {
			it := &c.Items[i]
			// Existence check only: the detail keeps the line's snapshot,
			// never the re-resolved product's current price.
			if _, err := s.products.GetByID(ctx, it.ProductID); err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return &ProductNotFoundError{ProductID: it.ProductID}
				}
				return errors.Wrapf(err, "get product %s", it.ProductID)
			}
			details = append(details, Detail{
				ID:        uuid.New().String(),
				OrderID:   o.ID,
				ProductID: it.ProductID,
				Price:     it.Price,
				Discount:  it.Discount,
				Quantity:  it.Quantity,
				CreatedAt: o.CreatedAt,
			})
		}
		o.Details = details

		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}

		if err := s.carts.DeleteItems(ctx, c.ID); err != nil {
			return errors.Wrap(err, "clear cart")
		}
		c.Items = nil
		s.pricer.Recalculate(c, nil)
		return errors.Wrap(s.carts.UpdateTotals(ctx, c), "update cart totals")
	})
	if err != nil {
		var pnf *ProductNotFoundError
		if errors.As(err, &pnf) {
			return nil, pnf
		}
		return nil, errors.Wrap(err, "checkout")
	}

	return o, nil
}

// Get returns one of the user's orders with its details.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

// List returns the user's order history, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Order, error) {
	out, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return out, nil
}
