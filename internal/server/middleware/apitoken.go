package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/handlers"
	"github.com/iudanet/webkit/internal/server/storage"
)

// APITokenScheme схема заголовка Authorization для Web API токенов
const APITokenScheme = "token"

// TokenValidator проверяет Web API токен
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.WebAPIToken, error)
}

// APITokenMiddleware аутентифицирует запрос заголовком "Authorization: token <hex>".
// В контекст кладется владелец токена и сама запись токена.
func APITokenMiddleware(logger *slog.Logger, tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			value, ok := credentials(w, r, APITokenScheme)
			if !ok {
				logger.WarnContext(ctx, "invalid Authorization header", slog.String("path", r.URL.Path))
				return
			}

			token, err := tokens.ValidateToken(ctx, value)
			if err != nil {
				if errors.Is(err, storage.ErrTokenNotFound) {
					logger.WarnContext(ctx, "unknown api token")
					writeError(w, "unauthorized: invalid token", http.StatusUnauthorized)
					return
				}
				logger.ErrorContext(ctx, "failed to validate api token", slog.Any("error", err))
				writeError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			ctx = context.WithValue(ctx, handlers.UserIDKey, token.UserID)
			ctx = context.WithValue(ctx, handlers.APITokenKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
