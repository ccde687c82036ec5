package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/xenking/bookcart/internal/domain/address"
	"github.com/xenking/bookcart/internal/domain/coupon"
	"github.com/xenking/bookcart/internal/domain/order"
)

type checkoutRequest struct {
	AddressID  string `json:"address_id"`
	CouponCode string `json:"coupon_code,omitempty"`
	Content    string `json:"content,omitempty"`
}

// Checkout converts the user's cart into an order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AddressID == "" {
		sendError(w, http.StatusBadRequest, "parameters invalid")
		return
	}

	o, err := h.orders.Checkout(r.Context(), order.CheckoutRequest{
		UserID:     UserFrom(r.Context()),
		AddressID:  req.AddressID,
		CouponCode: req.CouponCode,
		Content:    req.Content,
	})
	if err != nil {
		var pnf *order.ProductNotFoundError
		switch {
		case errors.Is(err, address.ErrNotFound):
			sendError(w, http.StatusNotFound, "address not found")
		case errors.Is(err, order.ErrEmptyCart):
			sendError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, coupon.ErrInvalid):
			sendError(w, http.StatusBadRequest, "coupon not valid")
		case errors.As(err, &pnf):
			sendError(w, http.StatusUnprocessableEntity, pnf.Error())
		default:
			sendInternalError(w, r, "checkout", err)
		}
		return
	}

	sendResult(w, http.StatusCreated, "submit order successfully", toOrderView(o))
}

// ListOrders returns the user's order history.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), UserFrom(r.Context()))
	if err != nil {
		sendInternalError(w, r, "list orders", err)
		return
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = toOrderView(&orders[i])
	}
	sendResult(w, http.StatusOK, "", views)
}

// GetOrder returns one of the user's orders.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			sendError(w, http.StatusNotFound, "order not found")
			return
		}
		sendInternalError(w, r, "get order", err)
		return
	}
	sendResult(w, http.StatusOK, "", toOrderView(o))
}
