package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/xenking/bookcart/internal/domain/cart"
	"github.com/xenking/bookcart/internal/domain/coupon"
)

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Content   string `json:"content,omitempty"`
}

type updateCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type cartMutationData struct {
	Item cartItemView `json:"item"`
	Cart cartView     `json:"cart"`
}

// AddCartItem merges a product into the user's cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" || req.Quantity < 1 {
		sendError(w, http.StatusBadRequest, "parameters invalid")
		return
	}

	it, c, err := h.carts.AddItem(r.Context(), UserFrom(r.Context()), cart.AddItemRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Content:   req.Content,
	})
	if err != nil {
		h.writeCartError(w, r, "add to cart", err)
		return
	}

	sendResult(w, http.StatusOK, "add to cart successfully", cartMutationData{
		Item: toCartItemView(it),
		Cart: toCartView(c),
	})
}

// UpdateCartItem sets the absolute quantity of an existing cart line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" || req.Quantity < 1 {
		sendError(w, http.StatusBadRequest, "parameters invalid")
		return
	}

	itemID := chi.URLParam(r, "itemID")
	it, c, err := h.carts.UpdateItemQuantity(r.Context(), UserFrom(r.Context()), itemID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeCartError(w, r, "update cart item", err)
		return
	}

	sendResult(w, http.StatusOK, "", cartMutationData{
		Item: toCartItemView(it),
		Cart: toCartView(c),
	})
}

// RemoveCartItem deletes a cart line.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveItem(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeCartError(w, r, "delete cart item", err)
		return
	}
	sendResult(w, http.StatusOK, "", toCartView(c))
}

// GetCart returns the cart with items and totals. An empty cart is reported
// as an error, matching the storefront contract.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), UserFrom(r.Context()))
	if err != nil {
		sendInternalError(w, r, "get cart", err)
		return
	}
	if len(c.Items) == 0 {
		sendError(w, http.StatusNotFound, "cart is empty")
		return
	}
	sendResult(w, http.StatusOK, "", toCartView(c))
}

// ApplyCoupon attaches a promo code to the cart; an empty code clears it.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.carts.ApplyCoupon(r.Context(), UserFrom(r.Context()), req.Code)
	if err != nil {
		h.writeCartError(w, r, "apply coupon", err)
		return
	}
	sendResult(w, http.StatusOK, "", toCartView(c))
}

func (h *Handler) writeCartError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var (
		pnf   *cart.ProductNotFoundError
		inf   *cart.ItemNotFoundError
		stock *cart.InsufficientStockError
	)
	switch {
	case errors.As(err, &pnf):
		sendError(w, http.StatusNotFound, pnf.Error())
	case errors.As(err, &inf):
		sendError(w, http.StatusNotFound, inf.Error())
	case errors.As(err, &stock):
		sendError(w, http.StatusBadRequest, stock.Error())
	case errors.Is(err, coupon.ErrInvalid):
		sendError(w, http.StatusBadRequest, "coupon not valid")
	default:
		sendInternalError(w, r, action, err)
	}
}
