package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/linktrend/internal/config"
	"github.com/iliyamo/linktrend/internal/middleware"
)

func runLimited(t *testing.T, cfg config.RateLimitConfig, rdb *redis.Client) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := middleware.NewTokenBucket(cfg, rdb)
	handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	require.NoError(t, handler(c))
	return rec
}

func TestNewTokenBucket_NeverBlocksWithoutRedis(t *testing.T) {
	enabled := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Hour,
		Prefix:         "rl",
	}

	t.Run("NilClient", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			rec := runLimited(t, enabled, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		disabled := enabled
		disabled.Enabled = false
		rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}) // never dialed
		defer rdb.Close()
		rec := runLimited(t, disabled, rdb)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("UnreachableRedis", func(t *testing.T) {
		// An enabled limiter whose backend is down still lets the
		// request through; availability wins over throttling.
		rdb := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer rdb.Close()
		rec := runLimited(t, enabled, rdb)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
