package models

import (
	"strings"
	"time"
)

// User представляет пользователя в системе
type User struct {
	CreatedAt       time.Time  `json:"created_at"`                  // время создания
	LastLogin       *time.Time `json:"last_login,omitempty"`        // время последнего входа
	ID              string     `json:"id"`                          // UUID пользователя
	Username        string     `json:"username"`                    // уникальный username
	FirstName       string     `json:"first_name"`                  // имя
	LastName        string     `json:"last_name"`                   // фамилия
	Email           string     `json:"email"`                       // email (используется gravatar)
	PasswordHash    string     `json:"-"`                           // bcrypt хеш пароля
	AvatarServiceID string     `json:"avatar_service_id,omitempty"` // выбранный пользователем avatar service
}

// FullName возвращает "Имя Фамилия" без лишних пробелов
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// DisplayName возвращает полное имя, а если оно пустое - username
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}
