package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/webkit/internal/client/storage"
	"github.com/iudanet/webkit/internal/validation"
	pkgapi "github.com/iudanet/webkit/pkg/api"
)

// ErrNotAuthenticated возвращается когда сессии нет или access token истек
var ErrNotAuthenticated = errors.New("not authenticated, run login first")

// Service управляет сессией CLI клиента: регистрация, вход, выход
type Service struct {
	apiClient APIClient
	store     storage.AuthStorage
	now       func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient APIClient, store storage.AuthStorage) *Service {
	return &Service{
		apiClient: apiClient,
		store:     store,
		now:       time.Now,
	}
}

// Register регистрирует нового пользователя. Сессия при этом не создается.
func (s *Service) Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error) {
	if err := validation.ValidateUsername(req.Username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return resp, nil
}

// Login выполняет аутентификацию и сохраняет сессию локально
func (s *Service) Login(ctx context.Context, username, password string) (*storage.AuthData, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("invalid password: password cannot be empty")
	}

	resp, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	session := &storage.AuthData{
		Username:    username,
		UserID:      userIDFromToken(resp.AccessToken),
		AccessToken: resp.AccessToken,
		ExpiresAt:   s.now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix(),
	}

	if err := s.store.SaveAuth(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// Current возвращает действующую сессию
func (s *Service) Current(ctx context.Context) (*storage.AuthData, error) {
	session, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.Expired(s.now()) {
		return nil, fmt.Errorf("session of %s expired: %w", session.Username, ErrNotAuthenticated)
	}

	return session, nil
}

// Logout удаляет локальную сессию. JWT stateless, сервер уведомлять не нужно.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.DeleteAuth(ctx); err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	return nil
}

// userIDFromToken достает user_id из claims без проверки подписи.
// Подпись проверяет сервер; клиенту ID нужен только для отображения.
func userIDFromToken(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	if id, ok := claims["user_id"].(string); ok {
		return id
	}
	sub, _ := claims.GetSubject()
	return sub
}
