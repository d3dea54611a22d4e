package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		handler    http.HandlerFunc
		name       string
		wantStatus int
		wantPanic  bool
	}{
		{
			name: "no panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "panic with string",
			handler:    func(w http.ResponseWriter, r *http.Request) { panic("something went wrong") },
			wantStatus: http.StatusInternalServerError,
			wantPanic:  true,
		},
		{
			name:       "panic with custom type",
			handler:    func(w http.ResponseWriter, r *http.Request) { panic(struct{ msg string }{"critical"}) },
			wantStatus: http.StatusInternalServerError,
			wantPanic:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf strings.Builder
			logger := slog.New(slog.NewTextHandler(&logBuf, nil))

			handler := RecoveryMiddleware(logger)(tt.handler)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tokens", nil)
			w := httptest.NewRecorder()

			assert.NotPanics(t, func() { handler.ServeHTTP(w, req) })
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantPanic {
				assert.NotContains(t, w.Body.String(), "critical")
				assertJSONError(t, w, http.StatusInternalServerError, "internal server error")
				assert.Contains(t, logBuf.String(), "panic recovered")
				assert.Contains(t, logBuf.String(), "stack=")
				assert.Contains(t, logBuf.String(), "/api/v1/tokens")
			} else {
				assert.Empty(t, logBuf.String())
			}
		})
	}
}

func TestRecoveryMiddleware_AbortHandler(t *testing.T) {
	handler := RecoveryMiddleware(setupTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	// http.ErrAbortHandler пробрасывается дальше в net/http
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
