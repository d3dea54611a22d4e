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
	queryCreateUser = `INSERT INTO users (id, username, first_name, last_name, email, password_hash, avatar_service, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	querySelectUser = `SELECT id, username, first_name, last_name, email, password_hash, avatar_service, created_at, last_login
		FROM users`

	queryUpdateUser = `UPDATE users
		SET username = $1, first_name = $2, last_name = $3, email = $4,
		    password_hash = $5, avatar_service = $6, last_login = $7
		WHERE id = $8`

	queryDeleteUser      = `DELETE FROM users WHERE id = $1`
	queryUpdateLastLogin = `UPDATE users SET last_login = $1 WHERE id = $2`
)

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, queryCreateUser,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.AvatarServiceID,
		user.CreatedAt,
		user.LastLogin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByUsername retrieves user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, querySelectUser+` WHERE username = $1`, username)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, querySelectUser+` WHERE id = $1`, userID)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarServiceID,
		&user.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return user, nil
}

// UpdateUser updates user information
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := s.db.ExecContext(ctx, queryUpdateUser,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.AvatarServiceID,
		user.LastLogin,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectAffected(result, storage.ErrUserNotFound)
}

// DeleteUser deletes user by ID
func (s *Storage) DeleteUser(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, queryDeleteUser, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectAffected(result, storage.ErrUserNotFound)
}

// UpdateLastLogin updates the last login timestamp
func (s *Storage) UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error {
	result, err := s.db.ExecContext(ctx, queryUpdateLastLogin, lastLogin, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return expectAffected(result, storage.ErrUserNotFound)
}
