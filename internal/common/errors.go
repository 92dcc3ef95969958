// Package common defines sentinel errors and small helpers shared by the
// client and backend layers. Callers should use errors.Is to match errors.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Auth errors. These never end a session with a crash; callers stay on
	// (or return to) the login flow.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailUnverified    = errors.New("email not confirmed")
	ErrNoSession          = errors.New("no session")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrRateLimited        = errors.New("rate limited")

	// Transport errors from the hosted backend.
	ErrUnavailable = errors.New("backend unavailable")

	// Record store errors: fatal on load, recoverable on update.
	ErrRecord = errors.New("record error")

	// Object store errors.
	ErrUpload = errors.New("upload error")

	// Local state errors.
	ErrBusy       = errors.New("operation already in progress")
	ErrValidation = errors.New("validation error")
)
