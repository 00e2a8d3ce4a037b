package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/atinyakov/LeafGuard/internal/apperr"
	"github.com/atinyakov/LeafGuard/internal/models"
	"github.com/atinyakov/LeafGuard/internal/repository"
)

// HistoryRepository defines the persistence operations needed by the HistoryService.
type HistoryRepository interface {
	// Insert stores a new history record and fills in store-assigned fields.
	Insert(ctx context.Context, rec *models.HistoryRecord) error
	// ListByUser retrieves all records belonging to the user, newest first.
	ListByUser(ctx context.Context, userID int64) ([]models.HistoryRecord, error)
	// GetOwned fetches a record by ID for the user, or repository.ErrNotFound.
	GetOwned(ctx context.Context, userID, id int64) (*models.HistoryRecord, error)
	// DeleteOwned removes a record by ID for the user, or repository.ErrNotFound.
	DeleteOwned(ctx context.Context, userID, id int64) error
}

// UserResolver resolves an authenticated username to its user record.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// BlobStore persists image blobs and hands back root-relative paths.
type BlobStore interface {
	Save(filename string, data []byte) (string, error)
	Remove(rel string) error
}

// HistoryService implements the per-user prediction history:
// storing a classified upload, listing and owner-initiated deletion.
type HistoryService struct {
	repo  HistoryRepository
	users UserResolver
	blobs BlobStore
	log   *zap.Logger
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(repo HistoryRepository, users UserResolver, blobs BlobStore, log *zap.Logger) *HistoryService {
	return &HistoryService{repo: repo, users: users, blobs: blobs, log: log}
}

// Create stores the uploaded image and inserts a history record for the
// user. The file write and the row insert are two independent steps: if the
// insert fails, the blob stays behind for the orphan cleaner to reap.
func (s *HistoryService) Create(ctx context.Context, username, filename string, image []byte, disease string, confidence float64) (*models.HistoryRecord, error) {
	if confidence < 0 || confidence > 1 {
		return nil, apperr.New(apperr.Validation, "confidence must be between 0 and 1")
	}

	user, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	rel, err := s.blobs.Save(filename, image)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to store image", err)
	}

	rec := &models.HistoryRecord{
		UserID:      user.ID,
		DiseaseName: disease,
		Confidence:  confidence,
		ImagePath:   rel,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		s.log.Warn("history insert failed, leaving orphaned image for cleanup",
			zap.String("image_path", rel), zap.Error(err))
		return nil, apperr.Wrap(apperr.Store, "database error", err)
	}
	return rec, nil
}

// List returns the user's records, newest first. A user with no history
// gets an empty slice, not an error.
func (s *HistoryService) List(ctx context.Context, username string) ([]models.HistoryRecord, error) {
	user, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, "database error", err)
	}
	if records == nil {
		records = []models.HistoryRecord{}
	}
	return records, nil
}

// Delete removes the record if the user owns it. The row delete is
// authoritative; removing the backing image afterwards is best-effort and
// only logged on failure.
func (s *HistoryService) Delete(ctx context.Context, username string, id int64) error {
	user, err := s.resolve(ctx, username)
	if err != nil {
		return err
	}

	rec, err := s.repo.GetOwned(ctx, user.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.NotFound, "history item not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Store, "database error", err)
	}

	if err := s.repo.DeleteOwned(ctx, user.ID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// concurrent delete of the same record
			return apperr.New(apperr.NotFound, "history item not found")
		}
		return apperr.Wrap(apperr.Store, "database error", err)
	}

	if rec.ImagePath != "" {
		if err := s.blobs.Remove(rec.ImagePath); err != nil {
			s.log.Warn("could not delete image file",
				zap.String("image_path", rec.ImagePath), zap.Error(err))
		}
	}
	return nil
}

func (s *HistoryService) resolve(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Store, "database error", err)
	}
	return user, nil
}
