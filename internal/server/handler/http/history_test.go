package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/LeafGuard/internal/apperr"
	"github.com/atinyakov/LeafGuard/internal/models"
)

// fakeHistoryService implements HistoryService for testing.
type fakeHistoryService struct {
	created   *models.HistoryRecord
	createErr error
	records   []models.HistoryRecord
	listErr   error
	deleteErr error

	gotUsername   string
	gotFilename   string
	gotDisease    string
	gotConfidence float64
	gotDeleteID   int64
}

func (f *fakeHistoryService) Create(ctx context.Context, username, filename string, image []byte, disease string, confidence float64) (*models.HistoryRecord, error) {
	f.gotUsername = username
	f.gotFilename = filename
	f.gotDisease = disease
	f.gotConfidence = confidence
	return f.created, f.createErr
}

func (f *fakeHistoryService) List(ctx context.Context, username string) ([]models.HistoryRecord, error) {
	f.gotUsername = username
	return f.records, f.listErr
}

func (f *fakeHistoryService) Delete(ctx context.Context, username string, id int64) error {
	f.gotUsername = username
	f.gotDeleteID = id
	return f.deleteErr
}

// multipartBody builds a multipart form with an optional file part and
// the given form values.
func multipartBody(t *testing.T, filename string, fileData []byte, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func TestHistoryHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		filename       string
		values         map[string]string
		service        *fakeHistoryService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "missing file",
			filename:       "",
			values:         map[string]string{"result": "Rust", "confidence": "0.9"},
			service:        &fakeHistoryService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "file is required",
		},
		{
			name:           "missing result",
			filename:       "leaf.jpg",
			values:         map[string]string{"confidence": "0.9"},
			service:        &fakeHistoryService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "result is required",
		},
		{
			name:           "bad confidence",
			filename:       "leaf.jpg",
			values:         map[string]string{"result": "Rust", "confidence": "high"},
			service:        &fakeHistoryService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "confidence must be a number",
		},
		{
			name:           "user no longer exists",
			filename:       "leaf.jpg",
			values:         map[string]string{"result": "Rust", "confidence": "0.9"},
			service:        &fakeHistoryService{createErr: apperr.New(apperr.NotFound, "user not found")},
			expectedCode:   http.StatusNotFound,
			expectedSubstr: "user not found",
		},
		{
			name:           "success",
			filename:       "leaf.jpg",
			values:         map[string]string{"result": "Rust", "confidence": "0.92"},
			service:        &fakeHistoryService{created: &models.HistoryRecord{ID: 1}},
			expectedCode:   http.StatusOK,
			expectedSubstr: "History entry created successfully",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.filename, []byte("img"), tt.values)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/history", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", "Bearer any")

			h := &HistoryHandler{HistoryService: tt.service}
			asUser(h.Create, "alice", false).ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
			if !bytes.Contains(rec.Body.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
			if tt.expectedCode == http.StatusOK {
				if tt.service.gotUsername != "alice" || tt.service.gotFilename != "leaf.jpg" {
					t.Errorf("service called with username=%q filename=%q", tt.service.gotUsername, tt.service.gotFilename)
				}
				if tt.service.gotConfidence != 0.92 {
					t.Errorf("service called with confidence=%v", tt.service.gotConfidence)
				}
			}
		})
	}
}

func TestHistoryHandler_List(t *testing.T) {
	svc := &fakeHistoryService{records: []models.HistoryRecord{
		{ID: 2, DiseaseName: "Brown spot", Confidence: 0.7, Timestamp: time.Now()},
		{ID: 1, DiseaseName: "Rust", Confidence: 0.9, Timestamp: time.Now().Add(-time.Hour)},
	}}
	h := &HistoryHandler{HistoryService: svc}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/history", nil)
	req.Header.Set("Authorization", "Bearer any")
	asUser(h.List, "alice", false).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if svc.gotUsername != "alice" {
		t.Errorf("expected list for alice, got %q", svc.gotUsername)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Brown spot")) {
		t.Errorf("expected records in response, got %q", rec.Body.String())
	}
}

func TestHistoryHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		service        *fakeHistoryService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid id",
			id:             "abc",
			service:        &fakeHistoryService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid history id",
		},
		{
			name:           "not owned or missing",
			id:             "7",
			service:        &fakeHistoryService{deleteErr: apperr.New(apperr.NotFound, "history item not found")},
			expectedCode:   http.StatusNotFound,
			expectedSubstr: "history item not found",
		},
		{
			name:           "success",
			id:             "7",
			service:        &fakeHistoryService{},
			expectedCode:   http.StatusOK,
			expectedSubstr: "History item deleted successfully",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HistoryHandler{HistoryService: tt.service}
			r := chi.NewRouter()
			r.Delete("/api/history/{id}", asUser(h.Delete, "alice", false).ServeHTTP)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("DELETE", "/api/history/"+tt.id, nil)
			req.Header.Set("Authorization", "Bearer any")
			r.ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !bytes.Contains(rec.Body.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
			if tt.expectedCode == http.StatusOK && tt.service.gotDeleteID != 7 {
				t.Errorf("service called with id=%d", tt.service.gotDeleteID)
			}
		})
	}
}

func TestHistoryHandler_Create_WithoutClaims(t *testing.T) {
	h := &HistoryHandler{HistoryService: &fakeHistoryService{}}

	body, contentType := multipartBody(t, "leaf.jpg", []byte("img"), map[string]string{"result": "Rust", "confidence": "0.9"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/history", body)
	req.Header.Set("Content-Type", contentType)

	h.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
