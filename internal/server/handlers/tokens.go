package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/storage"
	"github.com/iudanet/webkit/internal/validation"
	"github.com/iudanet/webkit/internal/webapi"
	"github.com/iudanet/webkit/pkg/api"
)

// TokenService выпуск и управление Web API токенами
type TokenService interface {
	GenerateToken(ctx context.Context, user *models.User, params webapi.GenerateParams) (*models.WebAPIToken, error)
	ListTokens(ctx context.Context, userID string) ([]*models.WebAPIToken, error)
	DeleteToken(ctx context.Context, userID, id string) error
}

// TokenHandler обрабатывает запросы Web API токенов
type TokenHandler struct {
	responder
	tokens      TokenService
	userStorage storage.UserStorage
}

// NewTokenHandler создает новый handler токенов
func NewTokenHandler(logger *slog.Logger, tokens TokenService, userStorage storage.UserStorage) *TokenHandler {
	return &TokenHandler{
		responder:   responder{logger: logger},
		tokens:      tokens,
		userStorage: userStorage,
	}
}

// Create обрабатывает POST /api/v1/tokens
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req api.CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode token request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateNote(req.Note); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.tokens.GenerateToken(ctx, user, webapi.GenerateParams{
		MaxAttempts: req.MaxAttempts,
		LocalSite:   req.LocalSite,
		Note:        req.Note,
		Policy:      req.Policy,
	})
	if err != nil {
		var genErr *webapi.TokenGenerationError
		switch {
		case errors.As(err, &genErr):
			h.sendErrorMessage(w, "token generation failed", genErr.Message, http.StatusServiceUnavailable)
		case errors.Is(err, webapi.ErrInvalidPolicy):
			h.sendError(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.ErrorContext(ctx, "failed to generate api token", slog.Any("error", err))
			h.sendError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	info := tokenInfo(token)
	info.Token = token.Token
	h.sendJSON(w, info, http.StatusCreated)
}

// List обрабатывает GET /api/v1/tokens
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	tokens, err := h.tokens.ListTokens(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list api tokens", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.TokenListResponse{Tokens: make([]api.TokenInfo, 0, len(tokens))}
	for _, t := range tokens {
		resp.Tokens = append(resp.Tokens, tokenInfo(t))
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/tokens/{id}
func (h *TokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.sendError(w, "token id is required", http.StatusBadRequest)
		return
	}

	if err := h.tokens.DeleteToken(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.sendError(w, "token not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete api token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// WhoAmI обрабатывает GET /api/v1/whoami (аутентификация Web API токеном)
func (h *TokenHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := GetAPIToken(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.WhoAmIResponse{
		UserID:    user.ID,
		Username:  user.Username,
		TokenID:   token.ID,
		LocalSite: token.LocalSite,
	}, http.StatusOK)
}

// currentUser загружает пользователя из JWT контекста; при ошибке ответ уже отправлен
func (h *TokenHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "unauthorized", http.StatusUnauthorized)
			return nil, false
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	return user, true
}

// tokenInfo публичное представление токена без его значения
func tokenInfo(t *models.WebAPIToken) api.TokenInfo {
	info := api.TokenInfo{
		ID:        t.ID,
		Note:      t.Note,
		LocalSite: t.LocalSite,
		CreatedAt: t.CreatedAt,
		LastUsed:  t.LastUsed,
	}
	if t.Policy != "" {
		info.Policy = json.RawMessage(t.Policy)
	}
	return info
}
