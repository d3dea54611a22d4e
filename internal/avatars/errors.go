package avatars

import "errors"

var (
	// ErrNotImplemented возвращается базовой реализацией AvatarURLsUncached.
	// Конкретный сервис обязан переопределить этот метод.
	ErrNotImplemented = errors.New("avatar service does not implement AvatarURLsUncached")

	// ErrInvalidSize indicates a non-positive avatar size
	ErrInvalidSize = errors.New("avatar size must be positive")

	// ErrNoUser indicates that avatar URLs were requested for a nil user
	ErrNoUser = errors.New("user is required")

	// ErrMissingBaseResolution indicates that a service returned no 1x URL
	ErrMissingBaseResolution = errors.New("avatar service returned no 1x url")

	// ErrServiceNotFound indicates an unknown avatar service id
	ErrServiceNotFound = errors.New("avatar service not found")

	// ErrAlreadyRegistered indicates a duplicate avatar service id
	ErrAlreadyRegistered = errors.New("avatar service already registered")

	// ErrNoAvatar indicates that the user has not uploaded an avatar
	ErrNoAvatar = errors.New("user has no uploaded avatar")
)
