// Package service provides business-logic services for authentication and
// prediction history, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/LeafGuard/internal/apperr"
	"github.com/atinyakov/LeafGuard/internal/models"
	"github.com/atinyakov/LeafGuard/internal/repository"
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// CreateUser inserts a new user and fills in store-assigned fields.
	// Duplicate identities surface as repository.ErrDuplicateUsername or
	// repository.ErrDuplicateEmail.
	CreateUser(ctx context.Context, user *models.User) error
	// GetByUsername fetches a user by username, or repository.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// ExistsByUsernameOrEmail reports whether the username or email is taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, bool, error)
	// ListAll fetches all users.
	ListAll(ctx context.Context) ([]models.User, error)
}

// TokenIssuer mints signed access tokens.
type TokenIssuer interface {
	// Issue returns a signed token carrying the subject and admin claim.
	Issue(username string, isAdmin bool) (string, error)
}

// LoginResult is the successful outcome of a login.
type LoginResult struct {
	// AccessToken is the signed bearer token.
	AccessToken string `json:"access_token"`
	// TokenType is always "bearer".
	TokenType string `json:"token_type"`
	// UserID is the authenticated user's ID.
	UserID int64 `json:"user_id"`
	// IsAdmin mirrors the user's admin flag.
	IsAdmin bool `json:"is_admin"`
}

// usernameRe constrains usernames to 3-20 word characters.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// AuthService implements signup, login and user listing.
type AuthService struct {
	repo   UserRepository
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService using the provided repository
// and token issuer.
func NewAuthService(repo UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// validatePassword enforces the signup password policy: at least 8
// characters with one uppercase letter, one lowercase letter and one digit.
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperr.New(apperr.Validation, "password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return apperr.New(apperr.Validation, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		return apperr.New(apperr.Validation, "password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return apperr.New(apperr.Validation, "password must contain at least one number")
	}
	return nil
}

// Signup validates the input, enforces identity uniqueness and creates a
// new user with a bcrypt password hash. All validation happens before any
// store access.
func (s *AuthService) Signup(ctx context.Context, username, email, password string, isAdmin bool) (*models.User, error) {
	if !usernameRe.MatchString(username) {
		return nil, apperr.New(apperr.Validation,
			"username must be 3-20 characters long and contain only letters, numbers, and underscores")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	usernameTaken, emailTaken, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, "database error", err)
	}
	if usernameTaken {
		return nil, apperr.New(apperr.Conflict, "username already exists. Please choose a different username.")
	}
	if emailTaken {
		return nil, apperr.New(apperr.Conflict, "email already exists. Please use a different email.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// A concurrent signup can slip past the pre-check; the unique
		// constraints are the authoritative guarantee.
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, apperr.New(apperr.Conflict, "username already exists. Please choose a different username.")
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperr.New(apperr.Conflict, "email already exists. Please use a different email.")
		default:
			return nil, apperr.Wrap(apperr.Store, "database error", err)
		}
	}
	return user, nil
}

// Login verifies the credentials and returns a minted token. An unknown
// username and a wrong password produce the identical error so the caller
// cannot tell which half was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "username and password are required")
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.Auth, "incorrect username or password")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, "database error", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.Auth, "incorrect username or password")
	}

	accessToken, err := s.tokens.Issue(user.Username, user.IsAdmin)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}

	return &LoginResult{
		AccessToken: accessToken,
		TokenType:   "bearer",
		UserID:      user.ID,
		IsAdmin:     user.IsAdmin,
	}, nil
}

// ListUsers returns all users. Privilege checks belong to the caller; the
// projection to a hash-free view happens at the HTTP boundary.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, "database error", err)
	}
	return users, nil
}
