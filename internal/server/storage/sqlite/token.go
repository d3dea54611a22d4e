package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/storage"
)

const tokenColumns = `id, user_id, token, local_site, note, policy, created_at, last_used`

// CreateAPIToken stores a new token record
func (s *Storage) CreateAPIToken(ctx context.Context, token *models.WebAPIToken) error {
	query := `INSERT INTO webapi_tokens (` + tokenColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.LocalSite,
		token.Note,
		token.Policy,
		token.CreatedAt,
		token.LastUsed,
	)
	if err != nil {
		// Единственное уникальное поле кроме UUID - значение токена
		if isUniqueViolation(err) {
			return storage.ErrTokenAlreadyExists
		}
		return fmt.Errorf("failed to save api token: %w", err)
	}

	return nil
}

// GetAPIToken retrieves token by token value
func (s *Storage) GetAPIToken(ctx context.Context, token string) (*models.WebAPIToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM webapi_tokens WHERE token = ?`

	record, err := scanToken(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get api token: %w", err)
	}

	return record, nil
}

// GetUserAPITokens retrieves all tokens of a user, newest first
func (s *Storage) GetUserAPITokens(ctx context.Context, userID string) ([]*models.WebAPIToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM webapi_tokens
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tokens: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*models.WebAPIToken, 0)
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tokens, nil
}

// DeleteAPIToken deletes a token of the user by record ID
func (s *Storage) DeleteAPIToken(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM webapi_tokens WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}

	return expectAffected(result, storage.ErrTokenNotFound)
}

// TouchAPIToken updates the last used timestamp
func (s *Storage) TouchAPIToken(ctx context.Context, id string, lastUsed time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE webapi_tokens SET last_used = ? WHERE id = ?`, lastUsed, id)
	if err != nil {
		return fmt.Errorf("failed to touch api token: %w", err)
	}

	return expectAffected(result, storage.ErrTokenNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*models.WebAPIToken, error) {
	token := &models.WebAPIToken{}
	var (
		localSite sql.NullString
		lastUsed  sql.NullTime
	)

	if err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&localSite,
		&token.Note,
		&token.Policy,
		&token.CreatedAt,
		&lastUsed,
	); err != nil {
		return nil, err
	}

	if localSite.Valid {
		token.LocalSite = &localSite.String
	}
	if lastUsed.Valid {
		token.LastUsed = &lastUsed.Time
	}

	return token, nil
}
