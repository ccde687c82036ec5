package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bookcart/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, user_id, status, subtotal, item_discount, tax,
		shipping, total, promo, discount, grand_total, address_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	createOrderDetailSQL = `INSERT INTO order_details (id, order_id, product_id, price, discount, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getOrderByIDSQL = `SELECT id, user_id, status, subtotal, item_discount, tax, shipping,
		total, promo, discount, grand_total, address_id, content, created_at
		FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT id, user_id, status, subtotal, item_discount, tax, shipping,
		total, promo, discount, grand_total, address_id, content, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`

	listOrderDetailsSQL = `SELECT id, order_id, product_id, price, discount, quantity, created_at
		FROM order_details WHERE order_id = ANY($1) ORDER BY id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order row and all its detail rows. Callers run it
// inside a transaction so the order is committed all-or-nothing.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	db := q(ctx, r.pool)

	_, err := db.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.Status, o.Subtotal, o.ItemDiscount, o.Tax,
		o.Shipping, o.Total, o.Promo, o.Discount, o.GrandTotal,
		o.AddressID, o.Content, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for i := range o.Details {
		d := &o.Details[i]
		_, err := db.Exec(ctx, createOrderDetailSQL,
			d.ID, d.OrderID, d.ProductID, d.Price, d.Discount, d.Quantity, d.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating order detail %q: %w", d.ID, err)
		}
	}
	return nil
}

// GetByID returns an order with its details.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := q(ctx, r.pool).Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	details, err := r.listDetails(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Details = details
	return &o, nil
}

// ListByUser returns the user's orders with details, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := q(ctx, r.pool).Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	details, err := r.listDetails(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		o := byID[d.OrderID]
		o.Details = append(o.Details, d)
	}
	return orders, nil
}

func (r *OrderRepository) listDetails(ctx context.Context, orderIDs []string) ([]order.Detail, error) {
	rows, err := q(ctx, r.pool).Query(ctx, listOrderDetailsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("listing order details: %w", err)
	}
	return pgx.CollectRows(rows, scanOrderDetail)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.Subtotal, &o.ItemDiscount, &o.Tax, &o.Shipping,
		&o.Total, &o.Promo, &o.Discount, &o.GrandTotal, &o.AddressID, &o.Content, &o.CreatedAt,
	)
	return o, err
}

func scanOrderDetail(row pgx.CollectableRow) (order.Detail, error) {
	var d order.Detail
	err := row.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Price, &d.Discount, &d.Quantity, &d.CreatedAt)
	return d, err
}
