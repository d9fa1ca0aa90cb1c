// Package httputil provides HTTP response helpers shared by the gateway and
// the backend services.
package httputil

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/NexaCommerce/commerce_layer/internal/errors"
)

// ErrorEnvelope is the wire format for every error response. Field order is
// part of the contract and must not change.
type ErrorEnvelope struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the fixed error envelope. Unclassified
// errors collapse to a 500 without leaking their message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	se := errors.GetServiceError(err)
	if se == nil {
		se = errors.Internal("", err)
	}
	WriteErrorEnvelope(w, r.URL.Path, se.HTTPStatus, se.Message)
}

// WriteErrorEnvelope writes the envelope for an explicit status and message.
func WriteErrorEnvelope(w http.ResponseWriter, path string, status int, message string) {
	env := ErrorEnvelope{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      path,
	}
	WriteJSON(w, status, env)
}
