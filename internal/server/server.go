// Package server собирает HTTP сервер: маршруты, middleware и зависимости.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/webkit/internal/avatars"
	"github.com/iudanet/webkit/internal/server/config"
	"github.com/iudanet/webkit/internal/server/handlers"
	"github.com/iudanet/webkit/internal/server/middleware"
	"github.com/iudanet/webkit/internal/server/storage"
)

// TokenManager выпускает токены для handlers и проверяет их в middleware
type TokenManager interface {
	handlers.TokenService
	middleware.TokenValidator
}

// Deps зависимости сервера
type Deps struct {
	Storage  storage.Storage
	Tokens   TokenManager
	Registry *avatars.Registry
	Renderer *avatars.Renderer
	// Presigner может быть nil: загрузка аватаров отключена
	Presigner handlers.AvatarObjectStore
}

// Server HTTP сервер webkit
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	deps    Deps
	limiter *middleware.PathRateLimiter
	handler http.Handler
}

// New создает сервер и регистрирует маршруты
func New(cfg *config.Config, logger *slog.Logger, deps Deps, version string) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		deps:   deps,
		limiter: middleware.NewPathRateLimiter([]middleware.PathRateLimit{
			{Path: "/api/v1/auth/login", Rate: cfg.RateLimit.AuthRequests, Window: cfg.RateLimit.Window},
			{Path: "/api/v1/auth/register", Rate: cfg.RateLimit.AuthRequests, Window: cfg.RateLimit.Window},
		}, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger,
			middleware.WithTrustedProxy(cfg.RateLimit.TrustProxy)),
	}

	mux := http.NewServeMux()
	s.routes(mux, version)

	var h http.Handler = mux
	h = middleware.AvatarCacheMiddleware(h)
	h = s.limiter.Middleware(h)
	h = middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(h)
	h = middleware.RecoveryMiddleware(logger)(h)
	s.handler = h

	return s
}

func (s *Server) routes(mux *http.ServeMux, version string) {
	jwtConfig := handlers.JWTConfig{
		Secret:         []byte(s.cfg.Auth.SecretKey),
		AccessTokenTTL: s.cfg.Auth.AccessTokenTTL,
	}
	jwtAuth := middleware.AuthMiddleware(s.logger, jwtConfig)
	tokenAuth := middleware.APITokenMiddleware(s.logger, s.deps.Tokens)

	health := handlers.NewHealthHandler(s.logger, version)
	auth := handlers.NewAuthHandler(s.logger, s.deps.Storage, jwtConfig)
	tokens := handlers.NewTokenHandler(s.logger, s.deps.Tokens, s.deps.Storage)
	avatar := handlers.NewAvatarHandler(s.logger, s.deps.Storage, s.deps.Storage, s.deps.Presigner, s.deps.Registry, s.deps.Renderer)

	mux.HandleFunc("GET /api/v1/health", health.Health)

	mux.HandleFunc("POST /api/v1/auth/register", auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)

	mux.Handle("POST /api/v1/tokens", jwtAuth(http.HandlerFunc(tokens.Create)))
	mux.Handle("GET /api/v1/tokens", jwtAuth(http.HandlerFunc(tokens.List)))
	mux.Handle("DELETE /api/v1/tokens/{id}", jwtAuth(http.HandlerFunc(tokens.Delete)))
	mux.Handle("GET /api/v1/whoami", tokenAuth(http.HandlerFunc(tokens.WhoAmI)))

	mux.HandleFunc("GET /api/v1/users/{username}/avatar", avatar.GetURLs)
	mux.HandleFunc("GET /api/v1/users/{username}/avatar.html", avatar.RenderHTML)
	mux.HandleFunc("GET /api/v1/avatar/services", avatar.Services)
	mux.Handle("PUT /api/v1/avatar/service", jwtAuth(http.HandlerFunc(avatar.SetService)))
	mux.Handle("POST /api/v1/avatar/upload", jwtAuth(http.HandlerFunc(avatar.Upload)))
	mux.Handle("DELETE /api/v1/avatar/upload", jwtAuth(http.HandlerFunc(avatar.DeleteUpload)))
}

// Handler возвращает корневой http.Handler со всеми middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run слушает cfg.Address до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает соединения ln до отмены ctx, затем корректно завершается
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", slog.String("address", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Close останавливает фоновые задачи и закрывает хранилище
func (s *Server) Close() error {
	s.limiter.Stop()
	if s.deps.Storage == nil {
		return nil
	}
	return s.deps.Storage.Close()
}
