package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bookcart/internal/domain/address"
	"github.com/xenking/bookcart/internal/domain/cart"
	"github.com/xenking/bookcart/internal/domain/coupon"
	"github.com/xenking/bookcart/internal/domain/order"
)

type stubCartService struct {
	addItem     func(userID string, req cart.AddItemRequest) (*cart.Item, *cart.Cart, error)
	get         func(userID string) (*cart.Cart, error)
	applyCoupon func(userID, code string) (*cart.Cart, error)
	removeItem  func(userID, itemID string) (*cart.Cart, error)
}

func (s *stubCartService) AddItem(_ context.Context, userID string, req cart.AddItemRequest) (*cart.Item, *cart.Cart, error) {
	return s.addItem(userID, req)
}

func (s *stubCartService) UpdateItemQuantity(context.Context, string, string, string, int) (*cart.Item, *cart.Cart, error) {
	return nil, nil, nil
}

func (s *stubCartService) RemoveItem(_ context.Context, userID, itemID string) (*cart.Cart, error) {
	return s.removeItem(userID, itemID)
}

func (s *stubCartService) Get(_ context.Context, userID string) (*cart.Cart, error) {
	return s.get(userID)
}

func (s *stubCartService) ApplyCoupon(_ context.Context, userID, code string) (*cart.Cart, error) {
	return s.applyCoupon(userID, code)
}

type stubOrderService struct {
	checkout func(req order.CheckoutRequest) (*order.Order, error)
}

func (s *stubOrderService) Checkout(_ context.Context, req order.CheckoutRequest) (*order.Order, error) {
	return s.checkout(req)
}

func (s *stubOrderService) Get(context.Context, string, string) (*order.Order, error) {
	return nil, order.ErrNotFound
}

func (s *stubOrderService) List(context.Context, string) ([]order.Order, error) {
	return nil, nil
}

type stubAddressService struct{}

func (stubAddressService) List(context.Context, string) ([]address.Address, error) {
	return nil, nil
}

func (stubAddressService) SetDefault(context.Context, string, string) (*address.Address, error) {
	return nil, address.ErrNotFound
}

func serve(t *testing.T, h *Handler, method, target, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, string, map[string]any) {
	t.Helper()
	var env struct {
		Status  bool           `json:"status"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Status, env.Message, env.Data
}

func TestMissingUserHeaderIsRejected(t *testing.T) {
	h := NewHandler(&stubCartService{}, &stubOrderService{}, stubAddressService{})

	rec := serve(t, h, http.MethodGet, "/cart", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	status, message, _ := decodeEnvelope(t, rec)
	assert.False(t, status)
	assert.Equal(t, "authentication required", message)
}

func TestAddCartItemSuccess(t *testing.T) {
	carts := &stubCartService{
		addItem: func(userID string, req cart.AddItemRequest) (*cart.Item, *cart.Cart, error) {
			assert.Equal(t, "u1", userID)
			assert.Equal(t, "p1", req.ProductID)
			assert.Equal(t, 2, req.Quantity)
			it := &cart.Item{ID: "i1", ProductID: "p1", Quantity: 2,
				Price: decimal.NewFromInt(100), Discount: decimal.NewFromInt(10)}
			c := &cart.Cart{ID: "c1", Items: []cart.Item{*it},
				Subtotal: decimal.NewFromInt(200), GrandTotal: decimal.NewFromInt(20180)}
			return it, c, nil
		},
	}
	h := NewHandler(carts, &stubOrderService{}, stubAddressService{})

	rec := serve(t, h, http.MethodPost, "/cart/items", `{"product_id":"p1","quantity":2}`, "u1")
	require.Equal(t, http.StatusOK, rec.Code)

	status, message, data := decodeEnvelope(t, rec)
	assert.True(t, status)
	assert.Equal(t, "add to cart successfully", message)
	item := data["item"].(map[string]any)
	assert.Equal(t, "i1", item["id"])
	assert.EqualValues(t, 100, item["price"])
}

func TestAddCartItemValidation(t *testing.T) {
	h := NewHandler(&stubCartService{}, &stubOrderService{}, stubAddressService{})

	for name, body := range map[string]string{
		"zero quantity":   `{"product_id":"p1","quantity":0}`,
		"missing product": `{"quantity":1}`,
		"unknown field":   `{"product_id":"p1","quantity":1,"bogus":true}`,
		"malformed json":  `{`,
	} {
		rec := serve(t, h, http.MethodPost, "/cart/items", body, "u1")
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)

		status, message, _ := decodeEnvelope(t, rec)
		assert.False(t, status, name)
		assert.Equal(t, "parameters invalid", message, name)
	}
}

func TestAddCartItemErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unknown product", &cart.ProductNotFoundError{ProductID: "p1"}, http.StatusNotFound},
		{"insufficient stock", &cart.InsufficientStockError{ProductTitle: "A", Available: 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := &stubCartService{
				addItem: func(string, cart.AddItemRequest) (*cart.Item, *cart.Cart, error) {
					return nil, nil, tt.err
				},
			}
			h := NewHandler(carts, &stubOrderService{}, stubAddressService{})

			rec := serve(t, h, http.MethodPost, "/cart/items", `{"product_id":"p1","quantity":1}`, "u1")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestGetCartEmptyIs404(t *testing.T) {
	carts := &stubCartService{
		get: func(string) (*cart.Cart, error) {
			return &cart.Cart{ID: "c1"}, nil
		},
	}
	h := NewHandler(carts, &stubOrderService{}, stubAddressService{})

	rec := serve(t, h, http.MethodGet, "/cart", "", "u1")
	require.Equal(t, http.StatusNotFound, rec.Code)

	status, message, _ := decodeEnvelope(t, rec)
	assert.False(t, status)
	assert.Equal(t, "cart is empty", message)
}

func TestApplyCouponInvalid(t *testing.T) {
	carts := &stubCartService{
		applyCoupon: func(string, string) (*cart.Cart, error) {
			return nil, coupon.ErrInvalid
		},
	}
	h := NewHandler(carts, &stubOrderService{}, stubAddressService{})

	rec := serve(t, h, http.MethodPut, "/cart/coupon", `{"code":"NOPE"}`, "u1")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, message, _ := decodeEnvelope(t, rec)
	assert.Equal(t, "coupon not valid", message)
}

func TestCheckoutSuccess(t *testing.T) {
	orders := &stubOrderService{
		checkout: func(req order.CheckoutRequest) (*order.Order, error) {
			assert.Equal(t, "u1", req.UserID)
			assert.Equal(t, "a1", req.AddressID)
			return &order.Order{ID: "o1", Status: order.StatusSubmitted,
				GrandTotal: decimal.NewFromInt(20230), AddressID: "a1"}, nil
		},
	}
	h := NewHandler(&stubCartService{}, orders, stubAddressService{})

	rec := serve(t, h, http.MethodPost, "/checkout", `{"address_id":"a1"}`, "u1")
	require.Equal(t, http.StatusCreated, rec.Code)

	status, message, data := decodeEnvelope(t, rec)
	assert.True(t, status)
	assert.Equal(t, "submit order successfully", message)
	assert.Equal(t, "o1", data["id"])
	assert.EqualValues(t, 20230, data["grand_total"])
}

func TestCheckoutErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unknown address", address.ErrNotFound, http.StatusNotFound},
		{"empty cart", order.ErrEmptyCart, http.StatusBadRequest},
		{"disabled coupon", coupon.ErrInvalid, http.StatusBadRequest},
		{"retired product", &order.ProductNotFoundError{ProductID: "p1"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := &stubOrderService{
				checkout: func(order.CheckoutRequest) (*order.Order, error) {
					return nil, tt.err
				},
			}
			h := NewHandler(&stubCartService{}, orders, stubAddressService{})

			rec := serve(t, h, http.MethodPost, "/checkout", `{"address_id":"a1"}`, "u1")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRemoveCartItemUnknown(t *testing.T) {
	carts := &stubCartService{
		removeItem: func(_, itemID string) (*cart.Cart, error) {
			return nil, &cart.ItemNotFoundError{ItemID: itemID}
		},
	}
	h := NewHandler(carts, &stubOrderService{}, stubAddressService{})

	rec := serve(t, h, http.MethodDelete, "/cart/items/i1", "", "u1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
