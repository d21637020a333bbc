package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

func signHS256(t *testing.T, c jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(testKey)
	require.NoError(t, err)
	return token
}

func TestJWTVerifier_HS256(t *testing.T) {
	v, err := NewJWTVerifier(Config{SigningKey: testKey, Issuer: "careline-dev", Audience: "careline"})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		token := signHS256(t, jwt.MapClaims{
			"sub":   "uid-house",
			"email": "house@example.com",
			"iss":   "careline-dev",
			"aud":   "careline",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		id, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "uid-house", id.UID)
		assert.Equal(t, "house@example.com", id.Email)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signHS256(t, jwt.MapClaims{
			"sub": "uid-house",
			"iss": "careline-dev",
			"aud": "careline",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		_, err := v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		token := signHS256(t, jwt.MapClaims{
			"sub": "uid-house",
			"iss": "careline-dev",
			"aud": "someone-else",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "uid-house",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("other"))
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "")
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}

func TestJWTVerifier_JWKS(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var fetches int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		_ = json.NewEncoder(w).Encode(jwkSet{Keys: []jwk{{
			Kty: "RSA",
			Kid: "key-1",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(priv.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(priv.E)).Bytes()),
		}}})
	}))
	defer srv.Close()

	v, err := NewJWTVerifier(Config{JWKSURL: srv.URL, Audience: "careline"})
	require.NoError(t, err)

	sign := func(kid string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "uid-john",
			"aud": "careline",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		tok.Header["kid"] = kid
		s, err := tok.SignedString(priv)
		require.NoError(t, err)
		return s
	}

	id, err := v.Verify(context.Background(), sign("key-1"))
	require.NoError(t, err)
	assert.Equal(t, "uid-john", id.UID)

	_, err = v.Verify(context.Background(), sign("key-1"))
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "keys should be served from cache")

	_, err = v.Verify(context.Background(), sign("unknown"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	_, err = BearerToken("Basic abc")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewJWTVerifier_RequiresKeySource(t *testing.T) {
	_, err := NewJWTVerifier(Config{})
	assert.Error(t, err)
}
