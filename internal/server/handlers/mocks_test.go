package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/webkit/internal/models"
	"github.com/iudanet/webkit/internal/server/storage"
	"github.com/iudanet/webkit/internal/webapi"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users           map[string]*models.User // username -> User
	createError     error
	getUserError    error
	updateError     error
	updateLastLogin func(ctx context.Context, userID string, loginTime time.Time) error
}

func newMockUserStorage(users ...*models.User) *mockUserStorage {
	m := &mockUserStorage{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Username]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	user, ok := m.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdateUser(ctx context.Context, user *models.User) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserStorage) DeleteUser(ctx context.Context, id string) error {
	return nil
}

func (m *mockUserStorage) UpdateLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	if m.updateLastLogin != nil {
		return m.updateLastLogin(ctx, userID, loginTime)
	}
	return nil
}

// mockTokenService is a mock implementation of TokenService for testing
type mockTokenService struct {
	generate   func(user *models.User, params webapi.GenerateParams) (*models.WebAPIToken, error)
	tokens     []*models.WebAPIToken
	listErr    error
	deleteErr  error
	lastParams webapi.GenerateParams
	deleted    []string
}

func (m *mockTokenService) GenerateToken(ctx context.Context, user *models.User, params webapi.GenerateParams) (*models.WebAPIToken, error) {
	m.lastParams = params
	return m.generate(user, params)
}

func (m *mockTokenService) ListTokens(ctx context.Context, userID string) ([]*models.WebAPIToken, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*models.WebAPIToken
	for _, t := range m.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTokenService) DeleteToken(ctx context.Context, userID, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// mockAvatarStorage is a mock implementation of AvatarStorage for testing
type mockAvatarStorage struct {
	uploads map[string]*models.AvatarUpload
	saveErr error
}

func newMockAvatarStorage() *mockAvatarStorage {
	return &mockAvatarStorage{uploads: make(map[string]*models.AvatarUpload)}
}

func (m *mockAvatarStorage) SaveAvatarUpload(ctx context.Context, upload *models.AvatarUpload) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.uploads[upload.UserID] = upload
	return nil
}

func (m *mockAvatarStorage) GetAvatarUpload(ctx context.Context, userID string) (*models.AvatarUpload, error) {
	upload, ok := m.uploads[userID]
	if !ok {
		return nil, storage.ErrAvatarNotFound
	}
	return upload, nil
}

func (m *mockAvatarStorage) DeleteAvatarUpload(ctx context.Context, userID string) error {
	if _, ok := m.uploads[userID]; !ok {
		return storage.ErrAvatarNotFound
	}
	delete(m.uploads, userID)
	return nil
}

// mockPresigner подписывает URL без обращения к S3 и запоминает удаленные объекты
type mockPresigner struct {
	err       error
	deleteErr error
	deleted   []string
}

func (m *mockPresigner) DeleteObject(ctx context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockPresigner) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://s3.example.com/" + key + "?X-Amz-Signature=put", nil
}

func (m *mockPresigner) PresignGet(ctx context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://s3.example.com/" + key + "?X-Amz-Signature=get", nil
}

// withUser добавляет в контекст запроса данные аутентифицированного пользователя
func withUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
	ctx = context.WithValue(ctx, UsernameKey, user.Username)
	return r.WithContext(ctx)
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}
