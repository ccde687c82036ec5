package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookcart/internal/domain/cart"
)

const (
	getCartByUserSQL = `SELECT id, user_id, status, subtotal, item_discount, tax, shipping,
		total, promo, discount, grand_total, content, created_at, updated_at
		FROM carts WHERE user_id = $1`

	listCartItemsSQL = `SELECT id, cart_id, product_id, quantity, price, discount, content, updated_at
		FROM cart_items WHERE cart_id = $1 ORDER BY updated_at, id`

	createCartSQL = `INSERT INTO carts (id, user_id) VALUES ($1, $2)`

	upsertCartItemSQL = `INSERT INTO cart_items (id, cart_id, product_id, quantity, price, discount, content, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			discount = EXCLUDED.discount,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at`

	deleteCartItemSQL = `DELETE FROM cart_items WHERE id = $1`

	deleteCartItemsSQL = `DELETE FROM cart_items WHERE cart_id = $1`

	updateCartTotalsSQL = `UPDATE carts SET
		subtotal = $2, item_discount = $3, tax = $4, shipping = $5, total = $6,
		promo = $7, discount = $8, grand_total = $9, updated_at = now()
		WHERE id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetByUserID loads the user's cart together with its line items.
func (r *CartRepository) GetByUserID(ctx context.Context, userID string) (*cart.Cart, error) {
	rows, err := q(ctx, r.pool).Query(ctx, getCartByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	itemRows, err := q(ctx, r.pool).Query(ctx, listCartItemsSQL, c.ID)
	if err != nil {
		return nil, fmt.Errorf("listing items for cart %q: %w", c.ID, err)
	}
	c.Items, err = pgx.CollectRows(itemRows, scanCartItem)
	if err != nil {
		return nil, fmt.Errorf("listing items for cart %q: %w", c.ID, err)
	}
	return &c, nil
}

// Create persists a new, empty cart.
func (r *CartRepository) Create(ctx context.Context, c *cart.Cart) error {
	_, err := q(ctx, r.pool).Exec(ctx, createCartSQL, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("creating cart %q: %w", c.ID, err)
	}
	return nil
}

// UpsertItem inserts the line or, for an existing (cart, product) pair,
// overwrites quantity and the price/discount snapshot.
func (r *CartRepository) UpsertItem(ctx context.Context, it *cart.Item) error {
	_, err := q(ctx, r.pool).Exec(ctx, upsertCartItemSQL,
		it.ID, it.CartID, it.ProductID, it.Quantity, it.Price, it.Discount, it.Content, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting cart item %q: %w", it.ID, err)
	}
	return nil
}

// DeleteItem removes a single line.
func (r *CartRepository) DeleteItem(ctx context.Context, itemID string) error {
	tag, err := q(ctx, r.pool).Exec(ctx, deleteCartItemSQL, itemID)
	if err != nil {
		return fmt.Errorf("deleting cart item %q: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return &cart.ItemNotFoundError{ItemID: itemID}
	}
	return nil
}

// DeleteItems removes every line of the cart.
func (r *CartRepository) DeleteItems(ctx context.Context, cartID string) error {
	_, err := q(ctx, r.pool).Exec(ctx, deleteCartItemsSQL, cartID)
	if err != nil {
		return fmt.Errorf("clearing cart %q: %w", cartID, err)
	}
	return nil
}

// UpdateTotals persists the derived monetary fields in one statement.
func (r *CartRepository) UpdateTotals(ctx context.Context, c *cart.Cart) error {
	_, err := q(ctx, r.pool).Exec(ctx, updateCartTotalsSQL,
		c.ID, c.Subtotal, c.ItemDiscount, c.Tax, c.Shipping, c.Total,
		c.Promo, c.Discount, c.GrandTotal,
	)
	if err != nil {
		return fmt.Errorf("updating totals for cart %q: %w", c.ID, err)
	}
	return nil
}

func scanCart(row pgx.CollectableRow) (cart.Cart, error) {
	var c cart.Cart
	err := row.Scan(
		&c.ID, &c.UserID, &c.Status, &c.Subtotal, &c.ItemDiscount, &c.Tax, &c.Shipping,
		&c.Total, &c.Promo, &c.Discount, &c.GrandTotal, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var it cart.Item
	err := row.Scan(
		&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.Price, &it.Discount,
		&it.Content, &it.UpdatedAt,
	)
	return it, err
}
