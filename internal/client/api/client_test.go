package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/webkit/pkg/api"
)

// newTestServer поднимает сервер с одним handler и клиент к нему
func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Empty(t, client.bearer())

	client.SetAccessToken("jwt")
	assert.Equal(t, "Bearer jwt", client.bearer())
}

func TestClient_Register(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "testuser", req.Username)
		assert.Equal(t, "t@example.com", req.Email)

		writeJSON(w, http.StatusCreated, api.RegisterResponse{UserID: "user-123", Message: "ok"})
	})

	resp, err := client.Register(context.Background(), api.RegisterRequest{
		Username: "testuser",
		Password: "password123",
		Email:    "t@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-123", resp.UserID)
}

func TestClient_Login(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: "jwt", ExpiresIn: 900})
	})

	resp, err := client.Login(context.Background(), api.LoginRequest{Username: "testuser", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.AccessToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		handler      http.HandlerFunc
		name         string
		wantContains string
		wantStatus   int
		unauthorized bool
	}{
		{
			name: "json error with user message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusServiceUnavailable, api.ErrorResponse{
					Error:   "token generation failed",
					Message: "Could not create a unique API token. Please try again.",
				})
			},
			wantStatus:   http.StatusServiceUnavailable,
			wantContains: "Please try again",
		},
		{
			name: "json error without message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusConflict, api.ErrorResponse{Error: "username already taken"})
			},
			wantStatus:   http.StatusConflict,
			wantContains: "username already taken",
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized: missing token"})
			},
			wantStatus:   http.StatusUnauthorized,
			wantContains: "missing token",
			unauthorized: true,
		},
		{
			name: "plain text error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad gateway", http.StatusBadGateway)
			},
			wantStatus:   http.StatusBadGateway,
			wantContains: "bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, tt.handler)

			_, err := client.CreateToken(context.Background(), api.CreateTokenRequest{})
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Contains(t, err.Error(), tt.wantContains)
			assert.Equal(t, tt.unauthorized, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestClient_InvalidJSONResponse(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestClient_Tokens(t *testing.T) {
	site := "intranet"
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/tokens":
			var req api.CreateTokenRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ci", req.Note)
			require.NotNil(t, req.MaxAttempts)
			assert.Equal(t, 3, *req.MaxAttempts)
			assert.JSONEq(t, `{"scope":"read"}`, string(req.Policy))
			writeJSON(w, http.StatusCreated, api.TokenInfo{ID: "t-1", Token: "abc", Note: req.Note, LocalSite: req.LocalSite})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/tokens":
			writeJSON(w, http.StatusOK, api.TokenListResponse{Tokens: []api.TokenInfo{{ID: "t-1"}, {ID: "t-2"}}})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/tokens/t-1":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
	client.SetAccessToken("jwt")
	ctx := context.Background()

	attempts := 3
	created, err := client.CreateToken(ctx, api.CreateTokenRequest{
		Note:        "ci",
		LocalSite:   &site,
		MaxAttempts: &attempts,
		Policy:      json.RawMessage(`{"scope":"read"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", created.Token)
	require.NotNil(t, created.LocalSite)
	assert.Equal(t, site, *created.LocalSite)

	tokens, err := client.ListTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	require.NoError(t, client.DeleteToken(ctx, "t-1"))
}

func TestClient_WhoAmI(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/whoami", r.URL.Path)
		assert.Equal(t, "token abc123", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, api.WhoAmIResponse{UserID: "u-1", Username: "ada", TokenID: "t-1"})
	})
	// JWT не должен подменять API токен
	client.SetAccessToken("jwt")

	who, err := client.WhoAmI(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "ada", who.Username)
}

func TestClient_Avatars(t *testing.T) {
	var uploaded []byte
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/users/ada/avatar":
			assert.Equal(t, "32", r.URL.Query().Get("size"))
			assert.Equal(t, "initials", r.URL.Query().Get("service"))
			writeJSON(w, http.StatusOK, api.AvatarResponse{Username: "ada", Service: "initials", Size: 32, URLs: map[string]string{"1x": "https://x/1"}})
		case r.URL.Path == "/api/v1/users/ada/avatar.html":
			assert.Empty(t, r.URL.RawQuery)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<img src="https://x/1">`))
		case r.URL.Path == "/api/v1/avatar/services":
			writeJSON(w, http.StatusOK, api.AvatarServicesResponse{Default: "gravatar", Services: []api.AvatarServiceInfo{{ID: "gravatar"}}})
		case r.URL.Path == "/api/v1/avatar/service":
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/v1/avatar/upload" && r.Method == http.MethodPost:
			writeJSON(w, http.StatusOK, api.AvatarUploadResponse{UploadURL: server.URL + "/bucket/key", StorageKey: "key", Method: http.MethodPut})
		case r.URL.Path == "/api/v1/avatar/upload" && r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/bucket/key":
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
			// presigned URL не должен получать JWT
			assert.Empty(t, r.Header.Get("Authorization"))
			uploaded, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetAccessToken("jwt")
	ctx := context.Background()

	urls, err := client.AvatarURLs(ctx, "ada", 32, "initials")
	require.NoError(t, err)
	assert.Equal(t, "https://x/1", urls.URLs["1x"])

	html, err := client.AvatarHTML(ctx, "ada", 0, "")
	require.NoError(t, err)
	assert.Equal(t, `<img src="https://x/1">`, html)

	services, err := client.AvatarServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gravatar", services.Default)

	require.NoError(t, client.SetAvatarService(ctx, "initials"))

	upload, err := client.RequestAvatarUpload(ctx, "image/png")
	require.NoError(t, err)
	require.NoError(t, client.UploadAvatar(ctx, upload, "image/png", []byte("png-bytes")))
	assert.Equal(t, []byte("png-bytes"), uploaded)

	require.NoError(t, client.DeleteAvatarUpload(ctx))
}

func TestClient_UploadAvatarFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "SignatureDoesNotMatch", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.UploadAvatar(context.Background(), &api.AvatarUploadResponse{UploadURL: server.URL + "/k", Method: http.MethodPut}, "image/png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
}

func TestAvatarQuery(t *testing.T) {
	assert.Equal(t, "", avatarQuery(0, ""))
	assert.Equal(t, "?size=40", avatarQuery(40, ""))
	assert.Equal(t, "?service=gravatar&size=40", avatarQuery(40, "gravatar"))
}
