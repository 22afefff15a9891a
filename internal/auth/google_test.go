package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/linktrend/internal/auth"
)

const testClientID = "client-123.apps.googleusercontent.com"

func newSigningKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func jwksBody(kid string, pub *rsa.PublicKey) string {
	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())
	return fmt.Sprintf(`{"keys":[{"kty":"RSA","kid":%q,"alg":"RS256","use":"sig","n":%q,"e":%q}]}`, kid, n, e)
}

func jwksServer(t *testing.T, kid string, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()
	body := jwksBody(kid, pub)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":     "https://accounts.google.com",
		"aud":     testClientID,
		"sub":     "1001",
		"email":   "mina@example.com",
		"name":    "Mina Rahman",
		"picture": "https://lh3.example.net/a/photo.jpg",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func newVerifier(t *testing.T, key *rsa.PrivateKey, kid string) *auth.GoogleVerifier {
	t.Helper()
	srv := jwksServer(t, kid, &key.PublicKey)
	v := auth.NewGoogleVerifier(testClientID)
	v.JWKSURL = srv.URL
	return v
}

func TestGoogleVerifier_Verify(t *testing.T) {
	key := newSigningKey(t)

	t.Run("ValidToken", func(t *testing.T) {
		v := newVerifier(t, key, "kid-1")
		ident, err := v.Verify(context.Background(), signToken(t, key, "kid-1", baseClaims()))
		assert.NoError(t, err)
		assert.Equal(t, "mina@example.com", ident.Email)
		assert.Equal(t, "Mina Rahman", ident.Name)
		assert.Equal(t, "https://lh3.example.net/a/photo.jpg", ident.Avatar)
	})

	t.Run("WrongAudience", func(t *testing.T) {
		v := newVerifier(t, key, "kid-1")
		claims := baseClaims()
		claims["aud"] = "someone-else"
		_, err := v.Verify(context.Background(), signToken(t, key, "kid-1", claims))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		v := newVerifier(t, key, "kid-1")
		claims := baseClaims()
		claims["iss"] = "https://evil.example.com"
		_, err := v.Verify(context.Background(), signToken(t, key, "kid-1", claims))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		v := newVerifier(t, key, "kid-1")
		claims := baseClaims()
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		_, err := v.Verify(context.Background(), signToken(t, key, "kid-1", claims))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("MissingProfileClaims", func(t *testing.T) {
		v := newVerifier(t, key, "kid-1")
		claims := baseClaims()
		delete(claims, "name")
		_, err := v.Verify(context.Background(), signToken(t, key, "kid-1", claims))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("UnknownSigningKey", func(t *testing.T) {
		otherKey := newSigningKey(t)
		v := newVerifier(t, key, "kid-1")
		_, err := v.Verify(context.Background(), signToken(t, otherKey, "kid-other", baseClaims()))
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		v := newVerifier(t, key, "kid-1")
		_, err := v.Verify(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("RefetchesAfterKeyRotation", func(t *testing.T) {
		oldKey, newKey := newSigningKey(t), newSigningKey(t)
		served := jwksBody("kid-old", &oldKey.PublicKey)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(served))
		}))
		t.Cleanup(srv.Close)

		v := auth.NewGoogleVerifier(testClientID)
		v.JWKSURL = srv.URL

		_, err := v.Verify(context.Background(), signToken(t, oldKey, "kid-old", baseClaims()))
		require.NoError(t, err)

		// Rotate: tokens now reference a kid the cache has never seen,
		// forcing a refetch.
		served = jwksBody("kid-new", &newKey.PublicKey)
		ident, err := v.Verify(context.Background(), signToken(t, newKey, "kid-new", baseClaims()))
		require.NoError(t, err)
		assert.Equal(t, "mina@example.com", ident.Email)
	})
}
