package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/storage"
)

const (
	queryCreateToken = `INSERT INTO webapi_tokens (id, user_id, token, local_site, note, policy, created_at, last_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	querySelectToken = `SELECT id, user_id, token, local_site, note, policy, created_at, last_used
		FROM webapi_tokens`

	queryDeleteToken = `DELETE FROM webapi_tokens WHERE id = $1 AND user_id = $2`
	queryTouchToken  = `UPDATE webapi_tokens SET last_used = $1 WHERE id = $2`
)

// CreateAPIToken stores a new token record
func (s *Storage) CreateAPIToken(ctx context.Context, token *models.WebAPIToken) error {
	_, err := s.db.ExecContext(ctx, queryCreateToken,
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
		if isUniqueViolation(err) {
			return storage.ErrTokenAlreadyExists
		}
		return fmt.Errorf("failed to save api token: %w", err)
	}
	return nil
}

// GetAPIToken retrieves token by token value
func (s *Storage) GetAPIToken(ctx context.Context, token string) (*models.WebAPIToken, error) {
	record, err := scanToken(s.db.QueryRowContext(ctx, querySelectToken+` WHERE token = $1`, token))
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
	rows, err := s.db.QueryContext(ctx, querySelectToken+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
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
	result, err := s.db.ExecContext(ctx, queryDeleteToken, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}
	return expectAffected(result, storage.ErrTokenNotFound)
}

// TouchAPIToken updates the last used timestamp
func (s *Storage) TouchAPIToken(ctx context.Context, id string, lastUsed time.Time) error {
	result, err := s.db.ExecContext(ctx, queryTouchToken, lastUsed, id)
	if err != nil {
		return fmt.Errorf("failed to touch api token: %w", err)
	}
	return expectAffected(result, storage.ErrTokenNotFound)
}

func scanToken(row interface{ Scan(dest ...any) error }) (*models.WebAPIToken, error) {
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
