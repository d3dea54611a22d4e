package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/storage"
)

// SaveAvatarUpload creates or replaces the upload record of a user
func (s *Storage) SaveAvatarUpload(ctx context.Context, upload *models.AvatarUpload) error {
	query := `
		INSERT INTO avatar_uploads (user_id, storage_key, content_type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			storage_key = excluded.storage_key,
			content_type = excluded.content_type,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		upload.UserID,
		upload.StorageKey,
		upload.ContentType,
		upload.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save avatar upload: %w", err)
	}

	return nil
}

// GetAvatarUpload retrieves the upload record of a user
func (s *Storage) GetAvatarUpload(ctx context.Context, userID string) (*models.AvatarUpload, error) {
	query := `SELECT user_id, storage_key, content_type, updated_at FROM avatar_uploads WHERE user_id = ?`

	upload := &models.AvatarUpload{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&upload.UserID,
		&upload.StorageKey,
		&upload.ContentType,
		&upload.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAvatarNotFound
		}
		return nil, fmt.Errorf("failed to get avatar upload: %w", err)
	}

	return upload, nil
}

// DeleteAvatarUpload removes the upload record of a user
func (s *Storage) DeleteAvatarUpload(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM avatar_uploads WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete avatar upload: %w", err)
	}

	return expectAffected(result, storage.ErrAvatarNotFound)
}
