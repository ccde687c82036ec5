package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/bookcart/internal/domain/coupon"
	"github.com/xenking/bookcart/internal/domain/product"
	"github.com/xenking/bookcart/internal/domain/tx"
)

// Service owns all cart mutations. Every mutation reprices the cart and
// persists the line plus the recomputed totals in one transaction.
type Service struct {
	products product.Repository
	coupons  coupon.Repository
	carts    Repository
	txm      tx.Manager
	pricer   Pricer
	now      func() time.Time
}

// NewService creates a cart Service with the required dependencies.
func NewService(
	products product.Repository,
	coupons coupon.Repository,
	carts Repository,
	txm tx.Manager,
	pricer Pricer,
) *Service {
	return &Service{
		products: products,
		coupons:  coupons,
		carts:    carts,
		txm:      txm,
		pricer:   pricer,
		now:      time.Now,
	}
}

// AddItemRequest holds the input for adding a product to the cart.
// Quantity is a delta added to any existing line for the same product.
type AddItemRequest struct {
	ProductID string
	Quantity  int
	Content   string
}

// AddItem merges the product into the user's cart. An existing line for the
// same product gets its quantity incremented and its price/discount snapshot
// refreshed to the product's current values; untouched lines keep their old
// snapshot. The mutation is rejected before anything is persisted when the
// resulting quantity exceeds available stock.
func (s *Service) AddItem(ctx context.Context, userID string, req AddItemRequest) (*Item, *Cart, error) {
	p, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, nil, &ProductNotFoundError{ProductID: req.ProductID}
		}
		return nil, nil, errors.Wrapf(err, "get product %s", req.ProductID)
	}

	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	it := c.Item(req.ProductID)
	if it == nil {
		c.Items = append(c.Items, Item{
			ID:        uuid.New().String(),
			CartID:    c.ID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Price:     p.Price,
			Discount:  p.Discount,
			Content:   req.Content,
			UpdatedAt: s.now(),
		})
		it = &c.Items[len(c.Items)-1]
	} else {
		it.Quantity += req.Quantity
		it.Price = p.Price
		it.Discount = p.Discount
		it.UpdatedAt = s.now()
	}

	if it.Quantity > p.Quantity {
		return nil, nil, &InsufficientStockError{ProductTitle: p.Title, Available: p.Quantity}
	}

	if err := s.saveItem(ctx, c, it); err != nil {
		return nil, nil, err
	}
	return it, c, nil
}

// UpdateItemQuantity sets the absolute quantity of an existing line and
// refreshes its price/discount snapshot from the product's current values.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID, productID string, quantity int) (*Item, *Cart, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, nil, &ProductNotFoundError{ProductID: productID}
		}
		return nil, nil, errors.Wrapf(err, "get product %s", productID)
	}

	c, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, &ItemNotFoundError{ItemID: itemID}
		}
		return nil, nil, errors.Wrap(err, "get cart")
	}

	it := c.ItemByID(itemID)
	if it == nil {
		return nil, nil, &ItemNotFoundError{ItemID: itemID}
	}

	it.Quantity = quantity
	it.Price = p.Price
	it.Discount = p.Discount
	it.UpdatedAt = s.now()

	if it.Quantity > p.Quantity {
		return nil, nil, &InsufficientStockError{ProductTitle: p.Title, Available: p.Quantity}
	}

	if err := s.saveItem(ctx, c, it); err != nil {
		return nil, nil, err
	}
	return it, c, nil
}

// RemoveItem deletes a line from the user's cart and reprices it.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*Cart, error) {
	c, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &ItemNotFoundError{ItemID: itemID}
		}
		return nil, errors.Wrap(err, "get cart")
	}

	idx := -1
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &ItemNotFoundError{ItemID: itemID}
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)

	if err := s.reprice(ctx, c); err != nil {
		return nil, err
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.carts.DeleteItem(ctx, itemID); err != nil {
			return errors.Wrap(err, "delete cart item")
		}
		return errors.Wrap(s.carts.UpdateTotals(ctx, c), "update cart totals")
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the user's cart with items and totals. Users without a cart
// get an empty, not-yet-persisted one.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c = s.emptyCart(userID)
			s.pricer.Recalculate(c, nil)
			return c, nil
		}
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// ApplyCoupon attaches the promo code to the cart and reprices it. The code
// must resolve to a rule that is enabled and inside its validity window.
// An empty code clears the promo.
func (s *Service) ApplyCoupon(ctx context.Context, userID, code string) (*Cart, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	var rule *coupon.Rule
	if code != "" {
		rule, err = s.coupons.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, coupon.ErrNotFound) {
				return nil, coupon.ErrInvalid
			}
			return nil, errors.Wrapf(err, "find coupon %q", code)
		}
		if !rule.ActiveAt(s.now()) {
			return nil, coupon.ErrInvalid
		}
	}

	c.Promo = code
	s.pricer.Recalculate(c, rule)

	if err := s.carts.UpdateTotals(ctx, c); err != nil {
		return nil, errors.Wrap(err, "update cart totals")
	}
	return c, nil
}

func (s *Service) getOrCreate(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.GetByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "get cart")
	}

	c = s.emptyCart(userID)
	if err := s.carts.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create cart")
	}
	return c, nil
}

func (s *Service) emptyCart(userID string) *Cart {
	return &Cart{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: s.now(),
	}
}

// reprice resolves the cart's promo code to a rule (a code that no longer
// resolves degrades to no discount) and recomputes the derived totals.
func (s *Service) reprice(ctx context.Context, c *Cart) error {
	var rule *coupon.Rule
	if c.Promo != "" && len(c.Items) > 0 {
		r, err := s.coupons.FindByCode(ctx, c.Promo)
		if err != nil && !errors.Is(err, coupon.ErrNotFound) {
			return errors.Wrapf(err, "find coupon %q", c.Promo)
		}
		rule = r
	}
	s.pricer.Recalculate(c, rule)
	return nil
}

// saveItem reprices the cart and persists the touched line together with the
// recomputed totals in one transaction.
func (s *Service) saveItem(ctx context.Context, c *Cart, it *Item) error {
	if err := s.reprice(ctx, c); err != nil {
		return err
	}
	return s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.carts.UpsertItem(ctx, it); err != nil {
			return errors.Wrap(err, "upsert cart item")
		}
		return errors.Wrap(s.carts.UpdateTotals(ctx, c), "update cart totals")
	})
}
