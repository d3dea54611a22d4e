package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrTokenNotFound indicates that the token was never saved locally
	ErrTokenNotFound = errors.New("token not found")
)
