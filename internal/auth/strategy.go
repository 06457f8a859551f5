package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrNoCredential is returned by a strategy when its credential source is
// absent, so the chain moves on to the next one.
var ErrNoCredential = errors.New("no credential")

// UserIDAttribute is the handshake attribute set by the upgrade phase.
const UserIDAttribute = "userId"

// Handshake carries what a connecting client presented: the CONNECT frame
// headers and the attributes stored during the HTTP upgrade.
type Handshake struct {
	Headers    map[string]string
	Attributes map[string]string
}

// Header returns the named header, matching the name case-insensitively.
func (h Handshake) Header(name string) string {
	if v, ok := h.Headers[name]; ok {
		return v
	}
	for k, v := range h.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Authenticator resolves the user id of a connecting client.
type Authenticator interface {
	Authenticate(ctx context.Context, hs Handshake) (string, error)
}

// TokenVerifier validates a bearer credential.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// FromBearerToken reads "Authorization: Bearer <token>" and verifies it.
type FromBearerToken struct {
	Verifier TokenVerifier
}

// Authenticate implements Authenticator.
func (s FromBearerToken) Authenticate(_ context.Context, hs Handshake) (string, error) {
	token, ok := BearerToken(hs.Header("Authorization"))
	if !ok {
		return "", ErrNoCredential
	}
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// FromHandshakeAttribute trusts the user id stored during the upgrade phase.
type FromHandshakeAttribute struct {
	Key string
}

// Authenticate implements Authenticator.
func (s FromHandshakeAttribute) Authenticate(_ context.Context, hs Handshake) (string, error) {
	key := s.Key
	if key == "" {
		key = UserIDAttribute
	}
	userID := strings.TrimSpace(hs.Attributes[key])
	if userID == "" {
		return "", ErrNoCredential
	}
	return userID, nil
}

// Chain tries each strategy in order. The first strategy whose credential
// is present decides the outcome; a rejected bearer token is not rescued by
// a later strategy.
type Chain []Authenticator

// Authenticate implements Authenticator.
func (c Chain) Authenticate(ctx context.Context, hs Handshake) (string, error) {
	for _, s := range c {
		userID, err := s.Authenticate(ctx, hs)
		if errors.Is(err, ErrNoCredential) {
			continue
		}
		return userID, err
	}
	return "", ErrInvalidCredential
}

// NewAuthenticator returns the standard chain: bearer token first, then the
// handshake attribute.
func NewAuthenticator(v TokenVerifier) Chain {
	return Chain{
		FromBearerToken{Verifier: v},
		FromHandshakeAttribute{Key: UserIDAttribute},
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
