package http

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/LeafGuard/internal/apperr"
	"github.com/atinyakov/LeafGuard/internal/middleware"
	"github.com/atinyakov/LeafGuard/internal/models"
)

// maxUploadBytes caps the multipart memory buffer for leaf images.
const maxUploadBytes = 16 << 20

// HistoryService defines the interface for prediction-history operations
// required by the HTTP handlers.
type HistoryService interface {
	// Create stores an uploaded image plus its classification result.
	Create(ctx context.Context, username, filename string, image []byte, disease string, confidence float64) (*models.HistoryRecord, error)
	// List returns the user's records, newest first.
	List(ctx context.Context, username string) ([]models.HistoryRecord, error)
	// Delete removes an owned record and its backing image.
	Delete(ctx context.Context, username string, id int64) error
}

// HistoryHandler handles HTTP requests for the prediction history.
type HistoryHandler struct {
	// HistoryService performs the underlying history operations.
	HistoryService HistoryService
}

// Create handles POST /history. It expects a multipart form with a "file"
// part, a "result" class label and a "confidence" score in [0, 1].
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.Auth, "could not validate credentials"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.New(apperr.Validation, "file is required"))
		return
	}
	defer file.Close()

	result := r.FormValue("result")
	if result == "" {
		writeError(w, apperr.New(apperr.Validation, "result is required"))
		return
	}

	confidence, err := strconv.ParseFloat(r.FormValue("confidence"), 64)
	if err != nil {
		writeError(w, apperr.New(apperr.Validation, "confidence must be a number"))
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperr.New(apperr.Validation, "could not read uploaded file"))
		return
	}

	if _, err := h.HistoryService.Create(r.Context(), claims.Username(), header.Filename, image, result, confidence); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "History entry created successfully"})
}

// List handles GET /history and returns the caller's records, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.Auth, "could not validate credentials"))
		return
	}

	records, err := h.HistoryService.List(r.Context(), claims.Username())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// Delete handles DELETE /history/{id}. Records the caller does not own are
// reported as not found.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.Auth, "could not validate credentials"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid history id"))
		return
	}

	if err := h.HistoryService.Delete(r.Context(), claims.Username(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "History item deleted successfully"})
}
