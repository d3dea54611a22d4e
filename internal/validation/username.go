package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"unicode/utf8"
)

// UsernamePattern определяет допустимый формат username
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
)

// ValidateUsername проверяет, что username соответствует требованиям
// Формат: только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// MaxNoteLen максимальная длина заметки API токена
const MaxNoteLen = 255

// ValidatePassword проверяет минимальные требования к паролю
// Минимум 8 символов
func ValidatePassword(password string) error {
	const minPasswordLen = 8

	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}

	return nil
}

// ValidateEmail проверяет формат email. Пустой email допустим
// (пользователь без email получает аватар по умолчанию)
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}

	return nil
}

// ValidateNote проверяет длину заметки API токена
func ValidateNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLen {
		return fmt.Errorf("note must not exceed %d characters", MaxNoteLen)
	}
	return nil
}
