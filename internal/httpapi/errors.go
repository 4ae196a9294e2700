package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// HTTPError allows services to provide an HTTP status code for an error.
// Errors without one map to 500.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSON marshals v up front so every response carries an exact
// Content-Length. The host application reads responses with a plain HTTP
// client and the contract promises fixed-length JSON bodies.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
