// Package common defines constants and sentinel errors shared by the client
// and server halves of fieldsync. Callers should match errors with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrMissingReference = errors.New("referenced record does not exist")

	// Service-level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
