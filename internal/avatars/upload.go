package avatars

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/storage"
)

// UploadServiceID id сервиса загруженных аватаров
const UploadServiceID = "file-upload"

// UploadLookup находит запись о загруженном аватаре пользователя
type UploadLookup interface {
	GetAvatarUpload(ctx context.Context, userID string) (*models.AvatarUpload, error)
}

// GetPresigner выдает временный URL для чтения объекта
type GetPresigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// UploadService отдает аватары, загруженные пользователями в object storage.
// Файл хранится в одном размере, поэтому возвращается только 1x.
type UploadService struct {
	BaseService
	uploads   UploadLookup
	presigner GetPresigner
}

// NewUploadService создает сервис загруженных аватаров
func NewUploadService(uploads UploadLookup, presigner GetPresigner) *UploadService {
	return &UploadService{
		BaseService: BaseService{
			ServiceID:   UploadServiceID,
			ServiceName: "File Upload Service",
		},
		uploads:   uploads,
		presigner: presigner,
	}
}

// AvatarURLsUncached возвращает presigned URL загруженного файла
func (s *UploadService) AvatarURLsUncached(ctx context.Context, user *models.User, size int) (URLs, error) {
	upload, err := s.uploads.GetAvatarUpload(ctx, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrAvatarNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoAvatar, user.Username)
		}
		return nil, fmt.Errorf("failed to get avatar upload: %w", err)
	}

	url, err := s.presigner.PresignGet(ctx, upload.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to presign avatar url: %w", err)
	}

	return URLs{Res1x: template.URL(url)}, nil //nolint:gosec // url produced by the signer
}
