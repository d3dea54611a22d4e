package handlers

import (
	"context"

	"github.com/iudanet/webkit/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

const (
	// UserIDKey ключ для хранения user_id в контексте
	UserIDKey contextKey = "user_id"
	// UsernameKey ключ для хранения username в контексте
	UsernameKey contextKey = "username"
	// APITokenKey ключ для записи Web API токена, которым аутентифицирован запрос
	APITokenKey contextKey = "api_token"
)

// GetUserID извлекает user_id из контекста
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetUsername извлекает username из контекста
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok && username != ""
}

// GetAPIToken извлекает Web API токен из контекста
func GetAPIToken(ctx context.Context) (*models.WebAPIToken, bool) {
	token, ok := ctx.Value(APITokenKey).(*models.WebAPIToken)
	return token, ok && token != nil
}
