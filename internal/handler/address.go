package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/xenking/bookcart/internal/domain/address"
)

// ListAddresses returns all addresses owned by the user.
func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.addresses.List(r.Context(), UserFrom(r.Context()))
	if err != nil {
		sendInternalError(w, r, "list addresses", err)
		return
	}

	views := make([]addressView, len(addrs))
	for i := range addrs {
		views[i] = toAddressView(&addrs[i])
	}
	sendResult(w, http.StatusOK, "", views)
}

// SetDefaultAddress marks an address as the user's default, atomically
// clearing the previous one.
func (h *Handler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	a, err := h.addresses.SetDefault(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "addressID"))
	if err != nil {
		if errors.Is(err, address.ErrNotFound) {
			sendError(w, http.StatusNotFound, "address not found")
			return
		}
		sendInternalError(w, r, "update default address", err)
		return
	}
	sendResult(w, http.StatusOK, "", toAddressView(a))
}
