// Package auth verifies Google-issued ID tokens. The client obtains a
// credential from Google's sign-in widget and posts it to the login
// endpoint; the server never talks to Google on the user's behalf
// beyond fetching the public signing keys (JWKS), which are cached
// and refreshed when a token references an unknown key id.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// googleJWKSURL serves Google's current ID-token signing keys.
const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// ErrInvalidToken covers every verification failure: bad signature,
// wrong audience or issuer, expired token, or missing profile claims.
// Callers answer 401 without distinguishing further.
var ErrInvalidToken = errors.New("invalid identity token")

// Identity is the verified profile extracted from an ID token.
type Identity struct {
	Email  string
	Name   string
	Avatar string // picture claim, may be empty
}

// GoogleVerifier validates RS256 ID tokens against Google's JWKS and
// the configured OAuth client id.
type GoogleVerifier struct {
	ClientID string
	JWKSURL  string // overridable for tests
	HTTP     *http.Client

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID: clientID,
		JWKSURL:  googleJWKSURL,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify parses and validates an ID token and returns the identity it
// asserts. The audience must equal the configured client id and the
// issuer must be Google's.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	tok, err := jwt.Parse(idToken,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Method.Alg())
			}
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token has no kid header")
			}
			return v.keyFor(ctx, kid)
		},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	if iss, _ := claims["iss"].(string); iss != "accounts.google.com" && iss != "https://accounts.google.com" {
		return Identity{}, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims["iss"])
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if email == "" || name == "" {
		return Identity{}, fmt.Errorf("%w: missing profile claims", ErrInvalidToken)
	}
	avatar, _ := claims["picture"].(string)
	return Identity{Email: email, Name: name, Avatar: avatar}, nil
}

// keyFor returns the RSA public key for a key id, refetching the JWKS
// when the id is unknown or the cache is older than an hour. Google
// rotates keys, so an unknown kid usually just means the cache is
// stale. The mutex only guards the cache map; the HTTP fetch runs
// unlocked so a slow refresh cannot serialize every login behind it
// (concurrent refreshes are harmless, last writer wins).
func (v *GoogleVerifier) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	if key, ok := v.keys[kid]; ok && time.Since(v.fetched) < time.Hour {
		v.mu.Unlock()
		return key, nil
	}
	v.mu.Unlock()

	keys, err := v.fetchKeys(ctx)
	if err != nil {
		// A stale key is better than no key when the refresh fails.
		v.mu.Lock()
		defer v.mu.Unlock()
		if key, ok := v.keys[kid]; ok {
			return key, nil
		}
		return nil, err
	}

	v.mu.Lock()
	v.keys = keys
	v.fetched = time.Now()
	key, ok := v.keys[kid]
	v.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no signing key with kid %q", kid)
	}
	return key, nil
}

// jwks mirrors the subset of RFC 7517 Google publishes for RSA keys.
type jwks struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

// fetchKeys downloads and parses the JWKS. It takes no locks.
func (v *GoogleVerifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.JWKSURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var doc jwks
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: int(new(big.Int).SetBytes(eBytes).Int64()),
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("jwks contained no usable RSA keys")
	}
	return keys, nil
}
