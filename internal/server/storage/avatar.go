package storage

import (
	"context"

	"github.com/iudanet/webkit/internal/models"
)

// AvatarStorage defines interface for uploaded avatar metadata persistence
type AvatarStorage interface {
	// SaveAvatarUpload creates or replaces the upload record of a user
	SaveAvatarUpload(ctx context.Context, upload *models.AvatarUpload) error

	// GetAvatarUpload retrieves the upload record of a user
	// Returns ErrAvatarNotFound if user has no upload
	GetAvatarUpload(ctx context.Context, userID string) (*models.AvatarUpload, error)

	// DeleteAvatarUpload removes the upload record of a user
	// Returns ErrAvatarNotFound if user has no upload
	DeleteAvatarUpload(ctx context.Context, userID string) error
}

// Storage объединяет все хранилища сервера; реализуется sqlite и postgres бэкендами
type Storage interface {
	UserStorage
	TokenStorage
	AvatarStorage
	Close() error
}
