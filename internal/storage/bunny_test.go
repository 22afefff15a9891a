package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/linktrend/internal/storage"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*storage.BunnyClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := storage.NewBunnyClient("myzone", "secret-key", "cdn.example.net")
	c.BaseURL = srv.URL
	return c, srv
}

func TestBunnyClient_Upload(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotPath, gotKey, gotBody string
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("AccessKey")
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			assert.Equal(t, http.MethodPut, r.Method)
			w.WriteHeader(http.StatusCreated)
		})

		url, err := c.Upload(context.Background(), "videos/123_clip.mp4", strings.NewReader("data"), "video/mp4")
		assert.NoError(t, err)
		assert.Equal(t, "https://cdn.example.net/videos/123_clip.mp4", url)
		assert.Equal(t, "/videos/123_clip.mp4", gotPath)
		assert.Equal(t, "secret-key", gotKey)
		assert.Equal(t, "data", gotBody)
	})

	t.Run("BadKey", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := c.Upload(context.Background(), "videos/x.mp4", strings.NewReader(""), "video/mp4")
		assert.ErrorIs(t, err, storage.ErrBadCredentials)
	})

	t.Run("MissingZone", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := c.Upload(context.Background(), "videos/x.mp4", strings.NewReader(""), "video/mp4")
		assert.ErrorIs(t, err, storage.ErrZoneNotFound)
	})
}

func TestBunnyClient_Delete(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := c.Delete(context.Background(), "videos/x.mp4")
	assert.Error(t, err) // callers only log this
}

func TestBunnyClient_List(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"ObjectName":"videos","Length":0,"IsDirectory":true},{"ObjectName":"a.mp4","Length":42,"IsDirectory":false}]`))
	})
	objects, err := c.List(context.Background(), "")
	assert.NoError(t, err)
	assert.Len(t, objects, 2)
	assert.True(t, objects[0].IsDirectory)
	assert.Equal(t, int64(42), objects[1].Length)
}

func TestBunnyClient_CDNURL(t *testing.T) {
	c := storage.NewBunnyClient("myzone", "k", "cdn.example.net")
	assert.Equal(t, "https://cdn.example.net/thumbnails/1_t.jpg", c.CDNURL("thumbnails/1_t.jpg"))
}
