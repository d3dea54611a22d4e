package middleware

import (
	"net/http"

	"github.com/iudanet/webkit/internal/avatars"
)

// AvatarCacheMiddleware создает кэш URL аватаров на время одного запроса
func AvatarCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := avatars.WithRequestCache(r.Context(), avatars.NewRequestCache())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
