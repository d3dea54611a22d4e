package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/webkit/internal/avatars"
	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/storage"
	"github.com/iudanet/webkit/pkg/api"
)

const (
	// DefaultAvatarSize размер аватара, если size не передан
	DefaultAvatarSize = 80
	// MaxAvatarSize максимальный размер аватара в пикселях (1x)
	MaxAvatarSize = 512
)

// allowedAvatarTypes допустимые content type загружаемых аватаров.
// SVG исключен: файл отдается с нашего bucket и может содержать скрипты.
var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// AvatarObjectStore object storage загруженных аватаров
type AvatarObjectStore interface {
	// PresignPut выдает временный URL для загрузки объекта
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	// DeleteObject удаляет замененный или удаленный аватар
	DeleteObject(ctx context.Context, key string) error
}

// AvatarHandler обрабатывает запросы аватаров
type AvatarHandler struct {
	responder
	userStorage storage.UserStorage
	uploads     storage.AvatarStorage
	presigner   AvatarObjectStore
	registry    *avatars.Registry
	renderer    *avatars.Renderer
	now         func() time.Time
}

// NewAvatarHandler создает handler аватаров.
// presigner может быть nil: тогда загрузка аватаров отключена.
func NewAvatarHandler(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	uploads storage.AvatarStorage,
	presigner AvatarObjectStore,
	registry *avatars.Registry,
	renderer *avatars.Renderer,
) *AvatarHandler {
	return &AvatarHandler{
		responder:   responder{logger: logger},
		userStorage: userStorage,
		uploads:     uploads,
		presigner:   presigner,
		registry:    registry,
		renderer:    renderer,
		now:         time.Now,
	}
}

// GetURLs обрабатывает GET /api/v1/users/{username}/avatar?size=N[&service=id]
func (h *AvatarHandler) GetURLs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, svc, size, ok := h.resolve(w, r)
	if !ok {
		return
	}

	urls, err := avatars.GetAvatarURLs(ctx, svc, user, size)
	if err != nil {
		h.sendAvatarError(ctx, w, err)
		return
	}

	h.sendJSON(w, api.AvatarResponse{
		URLs:     urls.StringMap(),
		Username: user.Username,
		Service:  svc.ID(),
		Size:     size,
	}, http.StatusOK)
}

// RenderHTML обрабатывает GET /api/v1/users/{username}/avatar.html?size=N[&service=id]
func (h *AvatarHandler) RenderHTML(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, svc, size, ok := h.resolve(w, r)
	if !ok {
		return
	}

	html, err := h.renderer.Render(ctx, avatars.RequestCacheFromContext(ctx), svc, user, size)
	if err != nil {
		h.sendAvatarError(ctx, w, err)
		return
	}

	writeHTML(w, html)
}

// Services обрабатывает GET /api/v1/avatar/services
func (h *AvatarHandler) Services(w http.ResponseWriter, r *http.Request) {
	resp := api.AvatarServicesResponse{Services: []api.AvatarServiceInfo{}}
	for _, svc := range h.registry.All() {
		resp.Services = append(resp.Services, api.AvatarServiceInfo{ID: svc.ID(), Name: svc.Name()})
	}
	if def, err := h.registry.Default(); err == nil {
		resp.Default = def.ID()
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// SetService обрабатывает PUT /api/v1/avatar/service
// Сохраняет выбранный пользователем сервис аватаров
func (h *AvatarHandler) SetService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.AvatarServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Service != "" {
		if _, err := h.registry.Get(req.Service); err != nil {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user.AvatarServiceID = req.Service
	if err := h.userStorage.UpdateUser(ctx, user); err != nil {
		h.logger.ErrorContext(ctx, "failed to update avatar service", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Upload обрабатывает POST /api/v1/avatar/upload
// Возвращает presigned PUT URL; файл клиент загружает в object storage напрямую
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if h.presigner == nil || h.uploads == nil {
		h.sendError(w, "avatar upload is not configured", http.StatusNotImplemented)
		return
	}

	var req api.AvatarUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !allowedAvatarTypes[req.ContentType] {
		h.sendError(w, "unsupported content type", http.StatusBadRequest)
		return
	}

	now := h.now().UTC()
	key := avatars.NewStorageKey(userID, now)

	uploadURL, err := h.presigner.PresignPut(ctx, key, req.ContentType)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to presign avatar upload", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Ключ предыдущего аватара: объект удаляется после замены записи
	var prevKey string
	if prev, err := h.uploads.GetAvatarUpload(ctx, userID); err == nil {
		prevKey = prev.StorageKey
	} else if !errors.Is(err, storage.ErrAvatarNotFound) {
		h.logger.WarnContext(ctx, "failed to get previous avatar upload", slog.Any("error", err))
	}

	upload := &models.AvatarUpload{
		UserID:      userID,
		StorageKey:  key,
		ContentType: req.ContentType,
		UpdatedAt:   now,
	}
	if err := h.uploads.SaveAvatarUpload(ctx, upload); err != nil {
		h.logger.ErrorContext(ctx, "failed to save avatar upload", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "avatar upload issued", slog.String("user_id", userID), slog.String("key", key))

	if prevKey != "" && prevKey != key {
		h.removeObject(ctx, prevKey)
	}

	h.sendJSON(w, api.AvatarUploadResponse{
		UploadURL:  uploadURL,
		StorageKey: key,
		Method:     http.MethodPut,
	}, http.StatusOK)
}

// DeleteUpload обрабатывает DELETE /api/v1/avatar/upload
func (h *AvatarHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if h.uploads == nil {
		h.sendError(w, "avatar upload is not configured", http.StatusNotImplemented)
		return
	}

	upload, err := h.uploads.GetAvatarUpload(ctx, userID)
	if err == nil {
		err = h.uploads.DeleteAvatarUpload(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, storage.ErrAvatarNotFound) {
			h.sendError(w, "avatar not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete avatar upload", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if h.presigner != nil {
		h.removeObject(ctx, upload.StorageKey)
	}

	w.WriteHeader(http.StatusNoContent)
}

// removeObject удаляет объект аватара. Запись в БД уже изменена,
// поэтому ошибка только логируется: объект останется сиротой в bucket.
func (h *AvatarHandler) removeObject(ctx context.Context, key string) {
	if err := h.presigner.DeleteObject(ctx, key); err != nil {
		h.logger.WarnContext(ctx, "failed to delete avatar object",
			slog.String("key", key), slog.Any("error", err))
	}
}

// resolve разбирает username, size и service запроса; при ошибке ответ уже отправлен
func (h *AvatarHandler) resolve(w http.ResponseWriter, r *http.Request) (*models.User, avatars.Service, int, bool) {
	ctx := r.Context()

	size, err := parseSize(r.URL.Query().Get("size"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return nil, nil, 0, false
	}

	user, err := h.userStorage.GetUserByUsername(ctx, r.PathValue("username"))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "user not found", http.StatusNotFound)
			return nil, nil, 0, false
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return nil, nil, 0, false
	}

	var svc avatars.Service
	if id := r.URL.Query().Get("service"); id != "" {
		svc, err = h.registry.Get(id)
	} else {
		svc, err = h.registry.ForUser(user)
	}
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return nil, nil, 0, false
	}

	return user, svc, size, true
}

func (h *AvatarHandler) sendAvatarError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, avatars.ErrNoAvatar):
		h.sendError(w, "avatar not found", http.StatusNotFound)
	case errors.Is(err, avatars.ErrInvalidSize):
		h.sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, avatars.ErrNotImplemented):
		h.logger.ErrorContext(ctx, "avatar service has no retrieval", slog.Any("error", err))
		h.sendError(w, "avatar service is not implemented", http.StatusNotImplemented)
	default:
		h.logger.ErrorContext(ctx, "failed to get avatar", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}

func parseSize(raw string) (int, error) {
	if raw == "" {
		return DefaultAvatarSize, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 {
		return 0, avatars.ErrInvalidSize
	}
	if size > MaxAvatarSize {
		return 0, errors.New("size must not exceed " + strconv.Itoa(MaxAvatarSize))
	}
	return size, nil
}

func writeHTML(w http.ResponseWriter, html template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}
