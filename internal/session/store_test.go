package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/linktrend/internal/session"
)

// fakeRedis keeps session payloads in a map and records the TTL each
// key was stored with.
type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	store := session.NewStore(rdb, 72*time.Hour)

	token, err := store.Create(ctx, session.Data{UserID: 3, Email: "mina@example.com"})
	require.NoError(t, err)
	assert.Len(t, token, 96) // 48 random bytes, hex encoded

	data, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), data.UserID)
	assert.Equal(t, "mina@example.com", data.Email)

	for _, ttl := range rdb.ttls {
		assert.Equal(t, 72*time.Hour, ttl)
	}

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_TokensAreUnique(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(newFakeRedis(), time.Hour)

	a, err := store.Create(ctx, session.Data{UserID: 1, Email: "a@example.com"})
	require.NoError(t, err)
	b, err := store.Create(ctx, session.Data{UserID: 1, Email: "a@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStore_DeleteUnknownTokenIsNotAnError(t *testing.T) {
	store := session.NewStore(newFakeRedis(), time.Hour)
	assert.NoError(t, store.Delete(context.Background(), "never-issued"))
}

func TestStore_TTL(t *testing.T) {
	store := session.NewStore(newFakeRedis(), 48*time.Hour)
	assert.Equal(t, 48*time.Hour, store.TTL())
}
