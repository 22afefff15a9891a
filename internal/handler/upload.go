package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/linktrend/internal/media"
	"github.com/iliyamo/linktrend/internal/storage"
)

// UploadHandler proxies media files to CDN storage. The server never
// keeps the files: videos are spooled to a temp file just long enough
// to probe their duration, thumbnails stream straight through.
type UploadHandler struct {
	Storage *storage.BunnyClient
}

func NewUploadHandler(s *storage.BunnyClient) *UploadHandler {
	return &UploadHandler{Storage: s}
}

// Video accepts a multipart upload under field "video", probes the
// clip's duration with ffprobe, stores it under videos/ and returns
// the public URL plus the duration string.
func (h *UploadHandler) Video(c echo.Context) error {
	fh, err := c.FormFile("video")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "video file is required"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read upload"})
	}
	defer src.Close()

	// Duration probing needs a seekable file on disk; multipart parts
	// only stream once.
	tmp, err := os.CreateTemp("", "upload-*"+safeExt(fh.Filename))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to buffer upload"})
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to buffer upload"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Minute)
	defer cancel()

	duration := media.ProbeDuration(ctx, tmp.Name())

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to buffer upload"})
	}

	remotePath := fmt.Sprintf("videos/%d_%s", time.Now().UnixMilli(), sanitizeFilename(fh.Filename))
	url, err := h.Storage.Upload(ctx, remotePath, tmp, contentTypeOf(fh, "video/mp4"))
	if err != nil {
		return h.storageError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "url": url, "duration": duration})
}

// Thumbnail accepts a multipart upload under field "thumbnail" and
// stores it under thumbnails/.
func (h *UploadHandler) Thumbnail(c echo.Context) error {
	fh, err := c.FormFile("thumbnail")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "thumbnail file is required"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read upload"})
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	remotePath := fmt.Sprintf("thumbnails/%d_%s", time.Now().UnixMilli(), sanitizeFilename(fh.Filename))
	url, err := h.Storage.Upload(ctx, remotePath, src, contentTypeOf(fh, "image/jpeg"))
	if err != nil {
		return h.storageError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "url": url})
}

// Test checks storage connectivity by listing the zone root; wired to
// a diagnostics route so operators can verify the key and zone name
// without pushing a real file.
func (h *UploadHandler) Test(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	objects, err := h.Storage.List(ctx, "")
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrBadCredentials):
			return c.JSON(http.StatusOK, echo.Map{
				"success": false,
				"zone":    h.Storage.Zone,
				"error":   "invalid storage access key",
			})
		case errors.Is(err, storage.ErrZoneNotFound):
			return c.JSON(http.StatusOK, echo.Map{
				"success": false,
				"zone":    h.Storage.Zone,
				"error":   "storage zone not found",
			})
		default:
			return c.JSON(http.StatusOK, echo.Map{
				"success": false,
				"zone":    h.Storage.Zone,
				"error":   err.Error(),
			})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"zone":    h.Storage.Zone,
		"cdnHost": h.Storage.CDNHost,
		"objects": len(objects),
	})
}

// storageError reports an upstream storage failure. Always 500: the
// caller's request was fine, the CDN side was not, and anything in the
// 4xx range would read as a problem with the client's own session.
func (h *UploadHandler) storageError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrBadCredentials):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid storage access key"})
	case errors.Is(err, storage.ErrZoneNotFound):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage zone not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "storage upload failed",
			"details": err.Error(),
		})
	}
}

// sanitizeFilename replaces whitespace so the object path stays URL
// friendly, and strips any directory components a client might sneak in.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "file"
	}
	return name
}

func safeExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		ext := name[i:]
		if len(ext) <= 8 && !strings.ContainsAny(ext, "/\\") {
			return ext
		}
	}
	return ""
}

func contentTypeOf(fh *multipart.FileHeader, fallback string) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return fallback
}
