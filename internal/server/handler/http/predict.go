package http

import (
	"context"
	"io"
	"net/http"

	"github.com/atinyakov/LeafGuard/internal/apperr"
	"github.com/atinyakov/LeafGuard/internal/models"
)

// Classifier turns image bytes into a class label and a confidence score.
type Classifier interface {
	Classify(ctx context.Context, filename string, image []byte) (*models.Prediction, error)
}

// PredictHandler forwards uploads to the external classifier service.
type PredictHandler struct {
	// Classifier performs the actual inference call.
	Classifier Classifier
}

// Predict handles POST /predict. It expects a multipart form with a "file"
// part and relays the classifier's {class, confidence} answer.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
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

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperr.New(apperr.Validation, "could not read uploaded file"))
		return
	}

	prediction, err := h.Classifier.Classify(r.Context(), header.Filename, image)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, "classifier unavailable", err))
		return
	}

	writeJSON(w, http.StatusOK, prediction)
}

// Ping handles GET /ping as a liveness probe.
func (h *PredictHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "alive"})
}
