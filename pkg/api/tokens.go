package api

import (
	"encoding/json"
	"time"
)

// CreateTokenRequest запрос на выпуск Web API токена
type CreateTokenRequest struct {
	LocalSite   *string         `json:"local_site,omitempty"`   // опциональный scope токена
	MaxAttempts *int            `json:"max_attempts,omitempty"` // лимит попыток генерации, по умолчанию 20
	Policy      json.RawMessage `json:"policy,omitempty"`       // JSON-объект политики
	Note        string          `json:"note,omitempty"`
}

// TokenInfo описание выпущенного токена
type TokenInfo struct {
	CreatedAt time.Time       `json:"created_at"`
	LastUsed  *time.Time      `json:"last_used,omitempty"`
	LocalSite *string         `json:"local_site,omitempty"`
	Policy    json.RawMessage `json:"policy,omitempty"`
	ID        string          `json:"id"`
	Note      string          `json:"note,omitempty"`
	// Token значение отдается только при создании
	Token string `json:"token,omitempty"`
}

// TokenListResponse список токенов пользователя
type TokenListResponse struct {
	Tokens []TokenInfo `json:"tokens"`
}

// WhoAmIResponse владелец API токена
type WhoAmIResponse struct {
	UserID    string  `json:"user_id"`
	Username  string  `json:"username"`
	TokenID   string  `json:"token_id"`
	LocalSite *string `json:"local_site,omitempty"`
}
