// Package models defines the core data structures for users and prediction history.
package models

import "time"

// User represents an application user with credentials.
type User struct {
	// ID is the store-assigned unique identifier for the user.
	ID int64 `json:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username"`
	// Email is the user's unique e-mail address.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the user's password.
	// It is never serialized into API responses.
	PasswordHash string `json:"-"`
	// IsAdmin marks the user as an administrator.
	IsAdmin bool `json:"is_admin"`
	// CreatedAt is the creation timestamp, assigned by the store.
	CreatedAt time.Time `json:"created_at"`
}

// HistoryRecord holds one classification result owned by a user.
type HistoryRecord struct {
	// ID is the unique identifier for the record.
	ID int64 `json:"id"`
	// UserID references the owning user.
	UserID int64 `json:"user_id"`
	// DiseaseName is the class label returned by the classifier.
	DiseaseName string `json:"disease_name"`
	// Confidence is the classifier's score in [0, 1].
	Confidence float64 `json:"confidence"`
	// ImagePath is the stored image location relative to the upload root,
	// always with forward slashes.
	ImagePath string `json:"image_path"`
	// Timestamp is the creation time, the sole sort key for listing.
	Timestamp time.Time `json:"timestamp"`
}

// Prediction is the classifier's answer for one image.
type Prediction struct {
	// Class is the predicted disease label.
	Class DiseaseClass `json:"class"`
	// Confidence is the score of the predicted class in [0, 1].
	Confidence float64 `json:"confidence"`
}

// DiseaseClass defines the set of labels the classifier can return.
type DiseaseClass string

const (
	// AlternariaLeafSpot represents Alternaria leaf spot disease.
	AlternariaLeafSpot DiseaseClass = "Alternaria leaf spot"
	// BrownSpot represents brown spot disease.
	BrownSpot DiseaseClass = "Brown spot"
	// GraySpot represents gray spot disease.
	GraySpot DiseaseClass = "Gray spot"
	// HealthyLeaf represents a leaf with no detected disease.
	HealthyLeaf DiseaseClass = "Healthy leaf"
	// Rust represents rust disease.
	Rust DiseaseClass = "Rust"
)
