package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/LeafGuard/internal/models"
)

// PostgresHistoryRepository implements history persistence against a PostgreSQL database.
type PostgresHistoryRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresHistoryRepository creates a new PostgresHistoryRepository using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance.
func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{DB: db}
}

// Insert stores a new history record and fills in the store-assigned ID and
// timestamp. The record must reference an existing user; the foreign key is
// the final authority on that.
func (r *PostgresHistoryRepository) Insert(ctx context.Context, rec *models.HistoryRecord) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO history (user_id, disease_name, confidence, image_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp
	`, rec.UserID, rec.DiseaseName, rec.Confidence, rec.ImagePath).
		Scan(&rec.ID, &rec.Timestamp)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

// ListByUser fetches all history records for the given user,
// newest first.
func (r *PostgresHistoryRepository) ListByUser(ctx context.Context, userID int64) ([]models.HistoryRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, disease_name, confidence, image_path, timestamp
		FROM history WHERE user_id = $1
		ORDER BY timestamp DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		var rec models.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.DiseaseName, &rec.Confidence, &rec.ImagePath, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return records, nil
}

// GetOwned fetches a single record by ID for the specified user.
// A record that exists but belongs to another user is reported as
// ErrNotFound, indistinguishable from one that does not exist.
func (r *PostgresHistoryRepository) GetOwned(ctx context.Context, userID, id int64) (*models.HistoryRecord, error) {
	var rec models.HistoryRecord
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, disease_name, confidence, image_path, timestamp
		FROM history WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&rec.ID, &rec.UserID, &rec.DiseaseName, &rec.Confidence, &rec.ImagePath, &rec.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetOwned: %w", err)
	}
	return &rec, nil
}

// DeleteOwned removes the record with the given ID if it belongs to the
// specified user. Returns ErrNotFound when nothing was deleted.
func (r *PostgresHistoryRepository) DeleteOwned(ctx context.Context, userID, id int64) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM history WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("DeleteOwned: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteOwned rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
