// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/LeafGuard/internal/token"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// TokenVerifier validates a bearer token string and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// BearerAuth is a middleware that enforces bearer token authentication.
//
// It expects an "Authorization: Bearer <token>" header, verifies the token
// and stores its claims in the request context, so the authenticated
// username and admin flag can be used downstream. Requests without a valid,
// unexpired token are rejected with 401.
func BearerAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			claims, err := verifier.Verify(raw)
			if err != nil {
				unauthorized(w, "could not validate credentials")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the verified token claims from the request
// context. Returns nil if the request did not pass BearerAuth.
func ClaimsFromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsKey).(*token.Claims)
	return claims
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"kind": "auth", "message": message})
}
