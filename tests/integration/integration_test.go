//go:build integration

// Package integration exercises the storage layer and the checkout flow
// against a real PostgreSQL instance started via testcontainers. Run with:
//
//	go test -tags integration ./tests/integration
package integration

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/xenking/bookcart/internal/domain/address"
	"github.com/xenking/bookcart/internal/domain/cart"
	"github.com/xenking/bookcart/internal/domain/coupon"
	"github.com/xenking/bookcart/internal/domain/order"
	"github.com/xenking/bookcart/internal/domain/product"
	"github.com/xenking/bookcart/internal/postgres"
)

var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("bookcart"),
		tcpostgres.WithUsername("bookcart"),
		tcpostgres.WithPassword("bookcart"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			log.Printf("terminate postgres: %v", err)
		}
	}()
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("connection string: %v", err)
	}

	pool, err = postgres.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	return m.Run()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type env struct {
	products  *postgres.ProductRepository
	coupons   *postgres.CouponRepository
	addresses *postgres.AddressRepository
	carts     *postgres.CartRepository
	orders    *postgres.OrderRepository

	cartSvc  *cart.Service
	orderSvc *order.Service
	addrSvc  *address.Service
}

func newEnv() *env {
	e := &env{
		products:  postgres.NewProductRepository(pool),
		coupons:   postgres.NewCouponRepository(pool),
		addresses: postgres.NewAddressRepository(pool),
		carts:     postgres.NewCartRepository(pool),
		orders:    postgres.NewOrderRepository(pool),
	}
	txm := postgres.NewTxManager(pool)
	pricer := cart.NewPricer(dec("0"), dec("20000"))
	e.cartSvc = cart.NewService(e.products, e.coupons, e.carts, txm, pricer)
	e.orderSvc = order.NewService(e.addresses, e.products, e.coupons, e.carts, e.orders, txm, pricer)
	e.addrSvc = address.NewService(e.addresses, txm)
	return e
}

func (e *env) seedProduct(t *testing.T, title, price, discount string, qty int) string {
	t.Helper()
	p := &product.Product{
		ID:       uuid.New().String(),
		Title:    title,
		Price:    dec(price),
		Discount: dec(discount),
		Quantity: qty,
	}
	require.NoError(t, e.products.Upsert(context.Background(), p))
	return p.ID
}

func (e *env) seedAddress(t *testing.T, userID string) string {
	t.Helper()
	a := &address.Address{
		ID:     uuid.New().String(),
		UserID: userID,
		Line1:  "12 Phố Huế",
		City:   "Hà Nội",
	}
	require.NoError(t, e.addresses.Create(context.Background(), a))
	return a.ID
}

func newUser() string {
	return "user-" + uuid.New().String()
}

func TestCartLifecycle(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	user := newUser()

	p1 := e.seedProduct(t, "Dế Mèn Phiêu Lưu Ký", "100", "10", 50)
	p2 := e.seedProduct(t, "Nhà Giả Kim", "50", "0", 50)

	_, _, err := e.cartSvc.AddItem(ctx, user, cart.AddItemRequest{ProductID: p1, Quantity: 2})
	require.NoError(t, err)
	_, c, err := e.cartSvc.AddItem(ctx, user, cart.AddItemRequest{ProductID: p2, Quantity: 1})
	require.NoError(t, err)

	assert.True(t, dec("250").Equal(c.Subtotal), c.Subtotal.String())
	assert.True(t, dec("20230").Equal(c.GrandTotal), c.GrandTotal.String())

	// Reload from the database and verify the persisted totals match.
	got, err := e.cartSvc.Get(ctx, user)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.True(t, dec("20230").Equal(got.GrandTotal), got.GrandTotal.String())

	// Remove one line; totals shrink accordingly.
	it := got.Item(p1)
	require.NotNil(t, it)
	c, err = e.cartSvc.RemoveItem(ctx, user, it.ID)
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(c.Subtotal), c.Subtotal.String())
}

func TestCouponOnCart(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	user := newUser()

	p1 := e.seedProduct(t, "Sách Giảm Giá", "100000", "10000", 50)
	_, _, err := e.cartSvc.AddItem(ctx, user, cart.AddItemRequest{ProductID: p1, Quantity: 2})
	require.NoError(t, err)

	code := "IT" + uuid.New().String()[:6]
	require.NoError(t, e.coupons.Upsert(ctx, &coupon.Rule{
		ID:         uuid.New().String(),
		Code:       code,
		Value:      dec("2"),
		MaxValue:   dec("50000"),
		Enabled:    true,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
	}))

	c, err := e.cartSvc.ApplyCoupon(ctx, user, code)
	require.NoError(t, err)
	assert.True(t, dec("40000").Equal(c.Discount), c.Discount.String())

	// Lookup is case-insensitive.
	c, err = e.cartSvc.ApplyCoupon(ctx, user, strings.ToLower(code))
	require.NoError(t, err)
	assert.True(t, dec("40000").Equal(c.Discount))

	// An empty code clears the promo.
	c, err = e.cartSvc.ApplyCoupon(ctx, user, "")
	require.NoError(t, err)
	assert.Empty(t, c.Promo)
	assert.True(t, c.Discount.IsZero())
}

func TestCheckoutFlow(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	user := newUser()

	p1 := e.seedProduct(t, "A", "100", "10", 50)
	addr := e.seedAddress(t, user)

	_, _, err := e.cartSvc.AddItem(ctx, user, cart.AddItemRequest{ProductID: p1, Quantity: 2})
	require.NoError(t, err)

	o, err := e.orderSvc.Checkout(ctx, order.CheckoutRequest{UserID: user, AddressID: addr})
	require.NoError(t, err)
	assert.Equal(t, order.StatusSubmitted, o.Status)
	assert.True(t, dec("20180").Equal(o.GrandTotal), o.GrandTotal.String())
	require.Len(t, o.Details, 1)

	// Cart is emptied and repriced to zero.
	c, err := e.cartSvc.Get(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.True(t, c.GrandTotal.IsZero())

	// Order is readable back with details.
	got, err := e.orderSvc.Get(ctx, user, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Details, 1)
	assert.True(t, dec("100").Equal(got.Details[0].Price))

	list, err := e.orderSvc.List(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCheckoutRollsBackOnRetiredProduct(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	user := newUser()

	p1 := e.seedProduct(t, "Kept", "100", "0", 50)
	p2 := e.seedProduct(t, "Retired", "50", "0", 50)
	addr := e.seedAddress(t, user)

	_, _, err := e.cartSvc.AddItem(ctx, user, cart.AddItemRequest{ProductID: p1, Quantity: 1})
	require.NoError(t, err)
	_, _, err = e.cartSvc.AddItem(ctx, user, cart.AddItemRequest{ProductID: p2, Quantity: 1})
	require.NoError(t, err)

	// Retire p2 from the catalog. Cart lines have no product FK, so the
	// snapshot row survives.
	_, err = pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, p2)
	require.NoError(t, err)

	_, err = e.orderSvc.Checkout(ctx, order.CheckoutRequest{UserID: user, AddressID: addr})
	var pnf *order.ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, p2, pnf.ProductID)

	// Nothing committed: no orders, cart untouched.
	list, err := e.orderSvc.List(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, list)

	c, err := e.cartSvc.Get(ctx, user)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
	assert.True(t, dec("20150").Equal(c.GrandTotal), c.GrandTotal.String())
}

func TestDefaultAddressFlip(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	user := newUser()

	a1 := e.seedAddress(t, user)
	a2 := e.seedAddress(t, user)

	_, err := e.addrSvc.SetDefault(ctx, user, a1)
	require.NoError(t, err)
	_, err = e.addrSvc.SetDefault(ctx, user, a2)
	require.NoError(t, err)

	// The partial unique index guarantees at most one default; verify the
	// flag landed on a2.
	def, err := e.addresses.FindDefault(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, a2, def.ID)

	all, err := e.addrSvc.List(ctx, user)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
