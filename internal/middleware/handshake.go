package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tteoksang-game-server/internal/auth"
)

// HandshakeUserIDKey is the context key for the user id resolved during the
// channel upgrade.
const HandshakeUserIDKey contextKey = "handshake_user_id"

// DefaultHandshakeCookie is the cookie carrying the access token.
const DefaultHandshakeCookie = "accessToken"

// HandshakeConfig holds configuration for the handshake middleware.
type HandshakeConfig struct {
	Verifier   auth.TokenVerifier
	CookieName string
	Logger     *zap.Logger
}

// NewHandshakeMiddleware resolves the user id of a channel upgrade request
// from its access token and stores it in the request context. A missing or
// invalid token does not reject the upgrade: the client can still present a
// bearer token in its CONNECT frame.
func NewHandshakeMiddleware(cfg HandshakeConfig) func(http.Handler) http.Handler {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = DefaultHandshakeCookie
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("handshake")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := handshakeToken(r, cookieName)
			if token == "" || cfg.Verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				logger.Debug("handshake token rejected",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), HandshakeUserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func handshakeToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

// GetHandshakeUserID retrieves the handshake user id from context.
func GetHandshakeUserID(ctx context.Context) string {
	if id, ok := ctx.Value(HandshakeUserIDKey).(string); ok {
		return id
	}
	return ""
}
