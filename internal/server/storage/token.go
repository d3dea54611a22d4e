package storage

import (
	"context"
	"time"

	"github.com/iudanet/webkit/internal/models"
)

// TokenStorage defines interface for Web API token persistence
type TokenStorage interface {
	// CreateAPIToken stores a new token record.
	// Returns ErrTokenAlreadyExists if a token with the same value exists
	CreateAPIToken(ctx context.Context, token *models.WebAPIToken) error

	// GetAPIToken retrieves token by token value
	// Returns ErrTokenNotFound if token doesn't exist
	GetAPIToken(ctx context.Context, token string) (*models.WebAPIToken, error)

	// GetUserAPITokens retrieves all tokens of a user, newest first
	// Returns empty slice if no tokens found
	GetUserAPITokens(ctx context.Context, userID string) ([]*models.WebAPIToken, error)

	// DeleteAPIToken deletes a token of the user by record ID
	// Returns ErrTokenNotFound if token doesn't exist or belongs to another user
	DeleteAPIToken(ctx context.Context, userID, id string) error

	// TouchAPIToken updates the last used timestamp
	// Returns ErrTokenNotFound if token doesn't exist
	TouchAPIToken(ctx context.Context, id string, lastUsed time.Time) error
}
