package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tteoksang-game-server/internal/handler"
	"tteoksang-game-server/pkg/uid"
)

type fixedCounter int

func (c fixedCounter) ActiveCount() int { return int(c) }

func newTestRouter(t *testing.T, checks ...handler.NamedCheck) http.Handler {
	t.Helper()
	return New(Config{
		Handler:      handler.New("test", checks...),
		AdminHandler: handler.NewAdminHandler(fixedCounter(3), "memory", "sqlite"),
		LoginKey:     "admin-key",
		Logger:       zaptest.NewLogger(t),
	})
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestRouter(t), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "test", data["version"])
	assert.True(t, uid.IsValid(rec.Header().Get("X-Request-ID")))
}

func TestReady(t *testing.T) {
	ok := handler.NamedCheck{Name: "cache", Check: func(context.Context) error { return nil }}
	down := handler.NamedCheck{Name: "game_db", Check: func(context.Context) error { return errors.New("connection refused") }}

	rec, body := do(t, newTestRouter(t, ok), httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["data"].(map[string]interface{})["ready"])

	rec, body = do(t, newTestRouter(t, ok, down), httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["ready"])
	checks := data["checks"].([]interface{})
	require.Len(t, checks, 2)
	assert.Equal(t, "error", checks[1].(map[string]interface{})["status"])
	assert.Equal(t, "connection refused", checks[1].(map[string]interface{})["error"])
}

func TestAdminSessions(t *testing.T) {
	r := newTestRouter(t)

	rec, _ := do(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions", nil)
	req.Header.Set("X-Login-Key", "wrong")
	rec, _ = do(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions", nil)
	req.Header.Set("X-Login-Key", "admin-key")
	rec, body := do(t, r, req)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["active_sessions"])
	assert.Equal(t, "memory", data["cache_backend"])
	assert.Equal(t, "sqlite", data["game_db_backend"])
}

func TestAdminSessions_DisabledWithoutKey(t *testing.T) {
	r := New(Config{AdminHandler: handler.NewAdminHandler(fixedCounter(0), "memory", "sqlite")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions", nil)
	req.Header.Set("X-Login-Key", "")
	rec, _ := do(t, r, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestID_Propagation(t *testing.T) {
	r := newTestRouter(t)
	id := uid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", id)
	rec, _ := do(t, r, req)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "not a uuid\r\n")
	rec, _ = do(t, r, req)
	assert.NotEqual(t, "not a uuid\r\n", rec.Header().Get("X-Request-ID"))
}

func TestNotFound(t *testing.T) {
	rec, body := do(t, newTestRouter(t), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]interface{})["code"])
}
