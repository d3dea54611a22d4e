package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that API token was not found
	ErrTokenNotFound = errors.New("api token not found")

	// ErrTokenAlreadyExists indicates a uniqueness violation on the token value.
	// Генератор токенов считает эту ошибку коллизией и повторяет попытку.
	ErrTokenAlreadyExists = errors.New("api token already exists")

	// ErrAvatarNotFound indicates that the user has no uploaded avatar
	ErrAvatarNotFound = errors.New("avatar upload not found")
)
