package middleware

import (
	"crypto/subtle"
	"net/http"

	"tteoksang-game-server/pkg/apierror"
	"tteoksang-game-server/pkg/response"
)

// LoginKeyHeader carries the admin login key.
const LoginKeyHeader = "X-Login-Key"

// RequireLoginKey guards admin endpoints with the configured login key.
// An empty key disables the endpoints.
func RequireLoginKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				response.Error(w, apierror.ServiceUnavailable("admin endpoints are disabled"))
				return
			}
			given := r.Header.Get(LoginKeyHeader)
			if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
				response.Error(w, apierror.Unauthorized("invalid login key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
