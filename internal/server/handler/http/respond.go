package http

import (
	"encoding/json"
	"net/http"

	"github.com/atinyakov/LeafGuard/internal/apperr"
)

// errorResponse is the structured failure body every endpoint returns.
type errorResponse struct {
	// Kind is the stable machine-readable error category.
	Kind string `json:"kind"`
	// Message is the human-readable description.
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps an error from the service layer to an HTTP status and a
// structured body. Only the taxonomy message ever reaches the caller;
// wrapped causes stay server-side.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Auth {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, statusOf(kind), errorResponse{Kind: string(kind), Message: apperr.MessageOf(err)})
}

// statusOf translates an error kind to its HTTP status code.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Auth:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
