package api

// AvatarResponse URL аватара пользователя по разрешениям ("1x", "2x", "3x")
type AvatarResponse struct {
	URLs     map[string]string `json:"urls"`
	Username string            `json:"username"`
	Service  string            `json:"service"`
	Size     int               `json:"size"`
}

// AvatarUploadRequest запрос на загрузку собственного аватара
type AvatarUploadRequest struct {
	ContentType string `json:"content_type"`
}

// AvatarUploadResponse presigned URL для PUT загрузки файла
type AvatarUploadResponse struct {
	UploadURL  string `json:"upload_url"`
	StorageKey string `json:"storage_key"`
	Method     string `json:"method"`
}

// AvatarServicesResponse список доступных сервисов аватаров
type AvatarServicesResponse struct {
	Services []AvatarServiceInfo `json:"services"`
	Default  string              `json:"default"`
}

// AvatarServiceInfo описание сервиса аватаров
type AvatarServiceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AvatarServiceRequest выбор сервиса аватаров пользователем; пустой id - сервис по умолчанию
type AvatarServiceRequest struct {
	Service string `json:"service"`
}
