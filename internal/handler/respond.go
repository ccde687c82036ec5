package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// response is the envelope every endpoint returns: a status flag, a
// human-readable message, and the payload.
type response struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func sendResult(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(response{Status: true, Message: message, Data: data})
}

func sendError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(response{Status: false, Message: message})
}

// sendInternalError logs the underlying cause and returns a generic message;
// persistence failures are never exposed to clients.
func sendInternalError(w http.ResponseWriter, r *http.Request, action string, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("action", action),
		zap.Error(err),
	)
	sendError(w, http.StatusInternalServerError, "an error occurred while "+action)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		sendError(w, http.StatusBadRequest, "parameters invalid")
		return false
	}
	return true
}
