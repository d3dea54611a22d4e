package webapi

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenGeneration все попытки сгенерировать уникальный токен исчерпаны
	ErrTokenGeneration = errors.New("api token generation failed")

	// ErrInvalidPolicy policy не является JSON-объектом
	ErrInvalidPolicy = errors.New("invalid token policy")
)

// TokenGenerationMessage сообщение для пользователя при исчерпании попыток
const TokenGenerationMessage = "Could not create a unique API token. Please try again."

// TokenGenerationError возвращается, когда все попытки упёрлись в коллизии.
// Message безопасно показывать пользователю.
type TokenGenerationError struct {
	Username string
	Message  string
	Attempts int
}

func (e *TokenGenerationError) Error() string {
	return fmt.Sprintf("%s: user %q, %d attempts", ErrTokenGeneration, e.Username, e.Attempts)
}

// Is позволяет errors.Is(err, ErrTokenGeneration)
func (e *TokenGenerationError) Is(target error) bool {
	return target == ErrTokenGeneration
}
