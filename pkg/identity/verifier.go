// Package identity verifies bearer tokens issued by the external identity
// provider and extracts the caller's uid and email.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingToken = errors.New("missing bearer token")
)

// Identity is a verified caller.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Verifier checks a bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type Config struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// SigningKey enables HS256 tokens for local development and tests.
	SigningKey  []byte
	KeyCacheTTL time.Duration
	Leeway      time.Duration
}

type claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	UserID        string `json:"user_id"`
}

// JWTVerifier verifies RS256 tokens against a JWKS endpoint, or HS256 tokens
// against a shared key when one is configured.
type JWTVerifier struct {
	cfg  Config
	keys *KeySet
}

func NewJWTVerifier(cfg Config) (*JWTVerifier, error) {
	if cfg.JWKSURL == "" && len(cfg.SigningKey) == 0 {
		return nil, errors.New("identity: either a JWKS URL or a signing key is required")
	}
	v := &JWTVerifier{cfg: cfg}
	if cfg.JWKSURL != "" {
		v.keys = NewKeySet(cfg.JWKSURL, cfg.KeyCacheTTL, nil)
	}
	return v, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.Leeway),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, v.keyFunc(ctx), opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	uid := c.Subject
	if uid == "" {
		uid = c.UserID
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return &Identity{
		UID:           uid,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
	}, nil
}

func (v *JWTVerifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			if v.keys == nil {
				return nil, errors.New("RS256 tokens are not accepted")
			}
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no kid header")
			}
			return v.keys.Key(ctx, kid)
		case *jwt.SigningMethodHMAC:
			if len(v.cfg.SigningKey) == 0 {
				return nil, errors.New("HS256 tokens are not accepted")
			}
			return v.cfg.SigningKey, nil
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
