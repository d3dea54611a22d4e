package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/webkit/internal/server/handlers"
	"github.com/iudanet/webkit/pkg/api"
)

// AuthMiddleware создает middleware для проверки JWT токена
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, ok := credentials(w, r, "Bearer")
			if !ok {
				logger.WarnContext(ctx, "invalid Authorization header", slog.String("path", r.URL.Path))
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, tokenString)
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				writeError(w, "unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			// Добавляем данные из токена в контекст
			ctx = context.WithValue(ctx, handlers.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, handlers.UsernameKey, claims.Username)

			logger.DebugContext(ctx, "user authenticated",
				slog.String("user_id", claims.UserID),
				slog.String("username", claims.Username),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// credentials извлекает значение заголовка "Authorization: <scheme> <value>".
// При ошибке ответ 401 уже отправлен.
func credentials(w http.ResponseWriter, r *http.Request, scheme string) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeError(w, "unauthorized: missing token", http.StatusUnauthorized)
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], scheme) {
		writeError(w, "unauthorized: invalid token format", http.StatusUnauthorized)
		return "", false
	}

	return strings.TrimSpace(parts[1]), true
}

// writeError отправляет JSON ошибку в формате api.ErrorResponse
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: message})
}
