package webapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/webkit/internal/crypto"
	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/storage"
)

// DefaultMaxAttempts число попыток генерации по умолчанию
const DefaultMaxAttempts = 20

// GenerateParams параметры выпуска токена
type GenerateParams struct {
	// MaxAttempts nil - DefaultMaxAttempts, 0 и меньше - немедленная ошибка
	MaxAttempts *int
	LocalSite   *string
	Policy      any
	Note        string
}

// Attempts возвращает указатель для GenerateParams.MaxAttempts
func Attempts(n int) *int {
	return &n
}

func (p GenerateParams) maxAttempts() int {
	if p.MaxAttempts == nil {
		return DefaultMaxAttempts
	}
	if *p.MaxAttempts < 0 {
		return 0
	}
	return *p.MaxAttempts
}

// Option настраивает TokenManager
type Option func(*TokenManager)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

// WithIDGenerator подменяет генератор ID записей
func WithIDGenerator(newID func() string) Option {
	return func(m *TokenManager) {
		m.newID = newID
	}
}

// TokenManager выпускает и проверяет Web API токены
type TokenManager struct {
	store  storage.TokenStorage
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	secret string
}

// NewTokenManager создает TokenManager.
// secret примешивается к каждому токену и не должен покидать сервер.
func NewTokenManager(store storage.TokenStorage, secret string, logger *slog.Logger, opts ...Option) *TokenManager {
	m := &TokenManager{
		store:  store,
		secret: secret,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TokenDigest вычисляет токен для попытки attempt
func TokenDigest(secret string, user *models.User, attempt int, now time.Time) string {
	raw := secret + user.ID + user.PasswordHash + strconv.Itoa(attempt) + now.Format(time.RFC3339Nano)
	return crypto.SHA1Hex(raw)
}

// GenerateToken выпускает новый уникальный токен пользователя и сохраняет его.
// Коллизия по значению токена (storage.ErrTokenAlreadyExists) ведет к новой попытке,
// любая другая ошибка хранилища прерывает генерацию.
func (m *TokenManager) GenerateToken(ctx context.Context, user *models.User, params GenerateParams) (*models.WebAPIToken, error) {
	if user == nil {
		return nil, errors.New("user is required")
	}

	policy, err := SerializePolicy(params.Policy)
	if err != nil {
		return nil, err
	}

	attempts := params.maxAttempts()
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("token generation canceled: %w", err)
		}

		now := m.now()
		token := &models.WebAPIToken{
			ID:        m.newID(),
			UserID:    user.ID,
			Token:     TokenDigest(m.secret, user, attempt, now),
			LocalSite: params.LocalSite,
			Note:      params.Note,
			Policy:    policy,
			CreatedAt: now,
		}

		err := m.store.CreateAPIToken(ctx, token)
		if err == nil {
			m.logger.InfoContext(ctx, "api token created",
				slog.String("user_id", user.ID),
				slog.String("token_id", token.ID),
				slog.Int("attempt", attempt))
			return token, nil
		}
		if !errors.Is(err, storage.ErrTokenAlreadyExists) {
			return nil, fmt.Errorf("failed to save api token: %w", err)
		}

		m.logger.DebugContext(ctx, "api token collision, retrying",
			slog.String("user_id", user.ID),
			slog.Int("attempt", attempt))
	}

	m.logger.ErrorContext(ctx, "unable to generate unique API token",
		slog.String("username", user.Username),
		slog.Int("attempts", attempts))

	return nil, &TokenGenerationError{
		Username: user.Username,
		Attempts: attempts,
		Message:  TokenGenerationMessage,
	}
}

// ValidateToken находит токен по значению и отмечает его использование
func (m *TokenManager) ValidateToken(ctx context.Context, token string) (*models.WebAPIToken, error) {
	if token == "" {
		return nil, storage.ErrTokenNotFound
	}

	record, err := m.store.GetAPIToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if err := m.store.TouchAPIToken(ctx, record.ID, now); err != nil {
		// Не критично: токен валиден, просто не обновилась отметка
		m.logger.WarnContext(ctx, "failed to update token last used",
			slog.String("token_id", record.ID), slog.Any("error", err))
	} else {
		record.LastUsed = &now
	}

	return record, nil
}

// ListTokens возвращает токены пользователя
func (m *TokenManager) ListTokens(ctx context.Context, userID string) ([]*models.WebAPIToken, error) {
	tokens, err := m.store.GetUserAPITokens(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api tokens: %w", err)
	}
	return tokens, nil
}

// DeleteToken отзывает токен пользователя
func (m *TokenManager) DeleteToken(ctx context.Context, userID, id string) error {
	if err := m.store.DeleteAPIToken(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}
	m.logger.InfoContext(ctx, "api token deleted", slog.String("user_id", userID), slog.String("token_id", id))
	return nil
}
