package models

import "time"

// WebAPIToken представляет API токен пользователя.
// Токен создается один раз и после сохранения не изменяется
// (кроме отметки LastUsed).
type WebAPIToken struct {
	CreatedAt time.Time  `json:"created_at"`           // время создания
	LastUsed  *time.Time `json:"last_used,omitempty"`  // время последнего использования
	LocalSite *string    `json:"local_site,omitempty"` // опциональный контекст (scope) токена
	ID        string     `json:"id"`                   // UUID записи
	UserID    string     `json:"user_id"`              // ID владельца
	Token     string     `json:"token"`                // hex sha1 digest, уникален
	Note      string     `json:"note,omitempty"`       // заметка пользователя
	Policy    string     `json:"policy,omitempty"`     // JSON документ политики
}
