// Package session implements the server-side session store. A session
// is an opaque 48-byte random token handed to the client in an
// HttpOnly cookie; the token maps to a small JSON payload (user id +
// email) held in Redis with a TTL. Nothing user-controlled is stored
// client-side.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CookieName is the cookie carrying the opaque session token.
const CookieName = "session_id"

const keyPrefix = "session:"

// ErrNotFound is returned when a token does not resolve to a live
// session (never issued, expired, or logged out).
var ErrNotFound = errors.New("session not found")

// Data is the payload bound to a session token.
type Data struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
}

// Client is the subset of the Redis API the store needs. *redis.Client
// satisfies it; tests substitute an in-memory fake.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store issues, resolves and revokes sessions.
type Store struct {
	rdb Client
	ttl time.Duration
}

func NewStore(rdb Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create issues a fresh token for the given identity and persists it
// with the store's TTL. The raw token is returned for the cookie.
func (s *Store) Create(ctx context.Context, data Data) (string, error) {
	token, err := randomHex(48)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token to its session data.
func (s *Store) Get(ctx context.Context, token string) (Data, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return Data{}, ErrNotFound
	}
	if err != nil {
		return Data{}, err
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return Data{}, err
	}
	return data, nil
}

// Delete revokes a token. Revoking an unknown token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}

// TTL exposes the configured session lifetime for cookie expiry.
func (s *Store) TTL() time.Duration { return s.ttl }

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
