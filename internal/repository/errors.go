// Package repository provides persistence implementations for the user and
// history services using a PostgreSQL database.
package repository

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist, or is not
	// owned by the requesting user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail indicates the email is already taken.
	ErrDuplicateEmail = errors.New("email already exists")
)
