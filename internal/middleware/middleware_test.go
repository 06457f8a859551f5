package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tteoksang-game-server/internal/auth"
)

func newVerifier(t *testing.T) *auth.JWTVerifier {
	t.Helper()
	v, err := auth.NewJWTVerifier(auth.Config{Secret: []byte("middleware-test-secret")})
	require.NoError(t, err)
	return v
}

func captureUserID(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetHandshakeUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestHandshakeMiddleware(t *testing.T) {
	v := newVerifier(t)
	mw := NewHandshakeMiddleware(HandshakeConfig{Verifier: v, Logger: zaptest.NewLogger(t)})

	valid, err := v.Issue("u1", "USER", time.Hour)
	require.NoError(t, err)
	expired, err := v.Issue("u1", "USER", -time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		wantID string
	}{
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "accessToken", Value: valid}) }, "u1"},
		{"query", func(r *http.Request) { r.URL.RawQuery = "access_token=" + valid }, "u1"},
		{"expired", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "accessToken", Value: expired}) }, ""},
		{"garbage", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "accessToken", Value: "garbage"}) }, ""},
		{"absent", func(r *http.Request) {}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws/game", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()

			var got string
			mw(captureUserID(&got)).ServeHTTP(rec, req)

			// The upgrade is never rejected here.
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tc.wantID, got)
		})
	}
}

func TestHandshakeMiddleware_CustomCookie(t *testing.T) {
	v := newVerifier(t)
	mw := NewHandshakeMiddleware(HandshakeConfig{Verifier: v, CookieName: "session"})
	token, err := v.Issue("u9", "USER", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws/game", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})

	var got string
	mw(captureUserID(&got)).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "u9", got)
}

func TestRecovery(t *testing.T) {
	h := Recovery(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestLogging_CapturesStatus(t *testing.T) {
	var seen int
	h := Logging(zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		seen = w.(*responseWriter).statusCode
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, http.StatusTeapot, seen)
}

func TestRequireLoginKey(t *testing.T) {
	h := RequireLoginKey("k")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set(LoginKeyHeader, "k")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
