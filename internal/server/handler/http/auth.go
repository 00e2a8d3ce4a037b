// Package http provides HTTP handlers for user authentication,
// prediction history and the classifier boundary.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/atinyakov/LeafGuard/internal/apperr"
	"github.com/atinyakov/LeafGuard/internal/middleware"
	"github.com/atinyakov/LeafGuard/internal/models"
	"github.com/atinyakov/LeafGuard/internal/service"
)

// validate checks the decoded request bodies before they reach the services.
var validate = validator.New()

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Signup validates the input and creates a new user.
	Signup(ctx context.Context, username, email, password string, isAdmin bool) (*models.User, error)
	// Login verifies the credentials and mints an access token.
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
	// ListUsers returns all users.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// AuthHandler handles HTTP requests for signup, login and admin listing.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// SignupRequest represents the JSON payload for user signup.
type SignupRequest struct {
	// Username is the login name to register.
	Username string `json:"username" validate:"required"`
	// Email is the user's e-mail address.
	Email string `json:"email" validate:"required,email"`
	// Password is the plaintext password; it is hashed before storage.
	Password string `json:"password" validate:"required"`
	// IsAdmin requests an administrator account.
	IsAdmin bool `json:"is_admin"`
}

// LoginRequest represents the JSON payload for user login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userInfo is the admin-listing projection; it never carries the password hash.
type userInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Signup handles user registration requests.
// It expects a JSON body with username, email and password; the email must
// be syntactically valid and username/password must satisfy the signup
// policy. Duplicate identities are rejected with 409.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "username, email and a valid password are required"))
		return
	}

	user, err := h.AuthService.Signup(r.Context(), req.Username, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "User created successfully",
		"is_admin": user.IsAdmin,
	})
}

// Login handles login requests. A bad username and a bad password both
// produce the same 401 response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	result, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListUsers handles the admin-only listing of all users. The bearer token
// must carry the admin claim; the response excludes password hashes.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.Auth, "could not validate credentials"))
		return
	}
	if !claims.IsAdmin {
		writeError(w, apperr.New(apperr.Forbidden, "admin access required"))
		return
	}

	users, err := h.AuthService.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	infos := make([]userInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, userInfo{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin})
	}
	writeJSON(w, http.StatusOK, infos)
}
