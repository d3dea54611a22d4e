package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iudanet/webkit/pkg/api"
)

// ErrUnauthorized сервер отклонил учетные данные (401)
var ErrUnauthorized = errors.New("unauthorized")

// Error ответ сервера с кодом ошибки
type Error struct {
	StatusCode int
	Err        string
	// Message сообщение для пользователя, если сервер его передал
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Err)
}

// Is позволяет проверять 401 через errors.Is(err, ErrUnauthorized)
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetAccessToken задает JWT для запросов, требующих аутентификации
func (c *Client) SetAccessToken(token string) {
	c.accessToken = token
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// CreateToken выпускает новый Web API токен
func (c *Client) CreateToken(ctx context.Context, req api.CreateTokenRequest) (*api.TokenInfo, error) {
	var resp api.TokenInfo
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/tokens", c.bearer(), req, &resp); err != nil {
		return nil, fmt.Errorf("create token request failed: %w", err)
	}
	return &resp, nil
}

// ListTokens возвращает токены текущего пользователя (без значений)
func (c *Client) ListTokens(ctx context.Context) ([]api.TokenInfo, error) {
	var resp api.TokenListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/tokens", c.bearer(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list tokens request failed: %w", err)
	}
	return resp.Tokens, nil
}

// DeleteToken отзывает токен по id
func (c *Client) DeleteToken(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/tokens/"+url.PathEscape(id), c.bearer(), nil, nil); err != nil {
		return fmt.Errorf("delete token request failed: %w", err)
	}
	return nil
}

// WhoAmI проверяет Web API токен на сервере
func (c *Client) WhoAmI(ctx context.Context, token string) (*api.WhoAmIResponse, error) {
	var resp api.WhoAmIResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/whoami", "token "+token, nil, &resp); err != nil {
		return nil, fmt.Errorf("whoami request failed: %w", err)
	}
	return &resp, nil
}

// AvatarURLs возвращает URL аватара пользователя. size и service опциональны.
func (c *Client) AvatarURLs(ctx context.Context, username string, size int, service string) (*api.AvatarResponse, error) {
	var resp api.AvatarResponse
	path := "/api/v1/users/" + url.PathEscape(username) + "/avatar" + avatarQuery(size, service)
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("avatar request failed: %w", err)
	}
	return &resp, nil
}

// AvatarHTML возвращает готовый HTML тег аватара
func (c *Client) AvatarHTML(ctx context.Context, username string, size int, service string) (string, error) {
	path := "/api/v1/users/" + url.PathEscape(username) + "/avatar.html" + avatarQuery(size, service)
	body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return "", fmt.Errorf("avatar html request failed: %w", err)
	}
	return string(body), nil
}

// AvatarServices возвращает доступные сервисы аватаров
func (c *Client) AvatarServices(ctx context.Context) (*api.AvatarServicesResponse, error) {
	var resp api.AvatarServicesResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/avatar/services", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("avatar services request failed: %w", err)
	}
	return &resp, nil
}

// SetAvatarService сохраняет выбранный сервис аватаров; пустой id - сервис по умолчанию
func (c *Client) SetAvatarService(ctx context.Context, service string) error {
	req := api.AvatarServiceRequest{Service: service}
	if err := c.doRequest(ctx, http.MethodPut, "/api/v1/avatar/service", c.bearer(), req, nil); err != nil {
		return fmt.Errorf("set avatar service request failed: %w", err)
	}
	return nil
}

// RequestAvatarUpload получает presigned URL для загрузки аватара
func (c *Client) RequestAvatarUpload(ctx context.Context, contentType string) (*api.AvatarUploadResponse, error) {
	var resp api.AvatarUploadResponse
	req := api.AvatarUploadRequest{ContentType: contentType}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/avatar/upload", c.bearer(), req, &resp); err != nil {
		return nil, fmt.Errorf("avatar upload request failed: %w", err)
	}
	return &resp, nil
}

// UploadAvatar загружает файл по presigned URL напрямую в object storage
func (c *Client) UploadAvatar(ctx context.Context, upload *api.AvatarUploadResponse, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, upload.Method, upload.UploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// DeleteAvatarUpload удаляет загруженный аватар
func (c *Client) DeleteAvatarUpload(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/avatar/upload", c.bearer(), nil, nil); err != nil {
		return fmt.Errorf("delete avatar request failed: %w", err)
	}
	return nil
}

func (c *Client) bearer() string {
	if c.accessToken == "" {
		return ""
	}
	return "Bearer " + c.accessToken
}

func avatarQuery(size int, service string) string {
	q := url.Values{}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	if service != "" {
		q.Set("service", service)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// doRequest выполняет запрос и декодирует JSON ответ в result (если не nil)
func (c *Client) doRequest(ctx context.Context, method, path, auth string, body, result any) error {
	respBody, err := c.do(ctx, method, path, auth, body)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// do выполняет HTTP запрос и возвращает тело успешного ответа
func (c *Client) do(ctx context.Context, method, path, auth string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Err = errResp.Error
			apiErr.Message = errResp.Message
		} else {
			apiErr.Err = string(respBody)
		}
		return nil, apiErr
	}

	return respBody, nil
}
