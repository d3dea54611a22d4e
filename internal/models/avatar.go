package models

import "time"

// AvatarUpload хранит ключ загруженного пользователем аватара в object storage
type AvatarUpload struct {
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      string    `json:"user_id"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
}
