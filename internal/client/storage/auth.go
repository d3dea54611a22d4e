package storage

import (
	"context"
	"time"
)

// AuthStorage хранит сессию CLI клиента между запусками
type AuthStorage interface {
	// SaveAuth перезаписывает текущую сессию
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth возвращает ErrAuthNotFound если пользователь не входил
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth удаляет сессию (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated проверяет наличие непросроченной сессии
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData сессия пользователя: JWT access token и срок его жизни
type AuthData struct {
	Username    string `json:"username"`
	UserID      string `json:"user_id,omitempty"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix seconds
}

// Expired reports whether the access token is no longer usable at now.
func (a *AuthData) Expired(now time.Time) bool {
	return !now.Before(time.Unix(a.ExpiresAt, 0))
}
