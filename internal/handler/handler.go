// Package handler exposes the cart, checkout, order, and address engines as
// a JSON HTTP API. Authentication lives upstream: the gateway injects the
// authenticated user id as the X-User-ID header, and the handlers never
// re-check roles.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/bookcart/internal/domain/address"
	"github.com/xenking/bookcart/internal/domain/cart"
	"github.com/xenking/bookcart/internal/domain/order"
)

// CartService is the slice of the cart engine the handlers use.
type CartService interface {
	AddItem(ctx context.Context, userID string, req cart.AddItemRequest) (*cart.Item, *cart.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID, productID string, quantity int) (*cart.Item, *cart.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*cart.Cart, error)
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	ApplyCoupon(ctx context.Context, userID, code string) (*cart.Cart, error)
}

// OrderService is the slice of the checkout engine the handlers use.
type OrderService interface {
	Checkout(ctx context.Context, req order.CheckoutRequest) (*order.Order, error)
	Get(ctx context.Context, userID, orderID string) (*order.Order, error)
	List(ctx context.Context, userID string) ([]order.Order, error)
}

// AddressService is the slice of address management the handlers use.
type AddressService interface {
	List(ctx context.Context, userID string) ([]address.Address, error)
	SetDefault(ctx context.Context, userID, addressID string) (*address.Address, error)
}

// Handler routes API requests to the domain services.
type Handler struct {
	carts     CartService
	orders    OrderService
	addresses AddressService
}

// NewHandler constructs a Handler with the required domain services.
func NewHandler(carts CartService, orders OrderService, addresses AddressService) *Handler {
	return &Handler{carts: carts, orders: orders, addresses: addresses}
}

// Routes returns the API router. Every route requires a gateway-supplied
// user identity.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequireUser)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddCartItem)
		r.Put("/items/{itemID}", h.UpdateCartItem)
		r.Delete("/items/{itemID}", h.RemoveCartItem)
		r.Put("/coupon", h.ApplyCoupon)
	})
	r.Post("/checkout", h.Checkout)
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{orderID}", h.GetOrder)
	})
	r.Route("/addresses", func(r chi.Router) {
		r.Get("/", h.ListAddresses)
		r.Post("/{addressID}/default", h.SetDefaultAddress)
	})

	return r
}
