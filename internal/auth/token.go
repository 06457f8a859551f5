// Package auth verifies channel credentials and resolves the user id of a
// connecting client.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential covers every way a credential can be rejected:
// malformed, expired, bad signature or missing claims.
var ErrInvalidCredential = errors.New("invalid credential")

// Config holds the signing material and claim checks of the verifier.
type Config struct {
	Secret []byte
	Issuer string
	Leeway time.Duration
}

// Claims is the decoded content of a valid access token.
type Claims struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

type accessClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 access tokens issued by the login service.
type JWTVerifier struct {
	config Config
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier. The secret must not be empty.
func NewJWTVerifier(cfg Config) (*JWTVerifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Leeway > 0 {
		options = append(options, jwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}

	return &JWTVerifier{config: cfg, parser: jwt.NewParser(options...)}, nil
}

// Verify checks the token and returns its claims. Every failure matches
// ErrInvalidCredential.
func (v *JWTVerifier) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidCredential)
	}

	parsed, err := v.parser.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return v.config.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidCredential)
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, fmt.Errorf("%w: missing userId claim", ErrInvalidCredential)
	}

	out := &Claims{UserID: claims.UserID, Role: claims.Role}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// Issue signs an access token for userID valid for ttl. A negative ttl
// yields an already-expired token.
func (v *JWTVerifier) Issue(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.config.Secret)
}
