package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/atinyakov/LeafGuard/internal/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PostgresUserRepository implements user persistence against a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a new user row and fills in the store-assigned ID and
// creation timestamp. The unique constraints on username and email are the
// authoritative guard against concurrent signups: a violation surfaces as
// ErrDuplicateUsername or ErrDuplicateEmail, never as a plain query error.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, user.Username, user.Email, user.PasswordHash, user.IsAdmin).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if strings.Contains(pqErr.Constraint, "email") {
				return ErrDuplicateEmail
			}
			return ErrDuplicateUsername
		}
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetByUsername fetches a single user by username.
// Returns ErrNotFound if no such user exists.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, is_admin, created_at
		FROM users WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether a user with the given username or
// email already exists. Used for the pre-insert duplicate check; the unique
// constraints remain the final authority.
func (r *PostgresUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, bool, error) {
	var usernameTaken, emailTaken bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			EXISTS(SELECT 1 FROM users WHERE username = $1),
			EXISTS(SELECT 1 FROM users WHERE email = $2)
	`, username, email).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return false, false, fmt.Errorf("ExistsByUsernameOrEmail: %w", err)
	}
	return usernameTaken, emailTaken, nil
}

// ListAll fetches all users ordered by ID. Password hashes are included in
// the model; callers are responsible for excluding them from projections.
func (r *PostgresUserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, username, email, is_admin, created_at FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.IsAdmin, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return users, nil
}
