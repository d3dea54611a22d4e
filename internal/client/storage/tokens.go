package storage

import (
	"context"
	"time"
)

// IssuedToken локальная копия выпущенного Web API токена.
// Сервер отдает значение токена только один раз, поэтому клиент сохраняет его сам.
type IssuedToken struct {
	CreatedAt time.Time `json:"created_at"`
	LocalSite *string   `json:"local_site,omitempty"`
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Note      string    `json:"note,omitempty"`
	Username  string    `json:"username"`
}

// TokenStorage журнал токенов, выпущенных с этого клиента
type TokenStorage interface {
	SaveToken(ctx context.Context, token *IssuedToken) error
	// GetToken возвращает ErrTokenNotFound если токен не сохранялся
	GetToken(ctx context.Context, id string) (*IssuedToken, error)
	// ListTokens возвращает токены пользователя в порядке создания
	ListTokens(ctx context.Context, username string) ([]*IssuedToken, error)
	DeleteToken(ctx context.Context, id string) error
}

// Storage полный набор клиентских хранилищ
type Storage interface {
	AuthStorage
	TokenStorage
	Close() error
}
