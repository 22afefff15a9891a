package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/linktrend/internal/access"
	"github.com/iliyamo/linktrend/internal/middleware"
	"github.com/iliyamo/linktrend/internal/model"
	"github.com/iliyamo/linktrend/internal/repository"
	"github.com/iliyamo/linktrend/internal/storage"
)

// VideoHandler serves the public catalog plus the admin delete
// operation, which also removes the backing media objects from the
// CDN (best-effort).
type VideoHandler struct {
	Videos  *repository.VideoRepo
	Users   *repository.UserRepo
	Storage *storage.BunnyClient
}

func NewVideoHandler(v *repository.VideoRepo, u *repository.UserRepo, s *storage.BunnyClient) *VideoHandler {
	return &VideoHandler{Videos: v, Users: u, Storage: s}
}

type createVideoReq struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Price        int64  `json:"price"`
	Creator      string `json:"creator"`
	CreatorID    string `json:"creatorId"`
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"videoUrl"`
	Duration     string `json:"duration"`
	UploadDate   string `json:"uploadDate"`
}

// Create inserts a catalog entry. The premium flag is computed from
// the price server-side; nothing the client sends can override it.
func (h *VideoHandler) Create(c echo.Context) error {
	var req createVideoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch {
	case strings.TrimSpace(req.Title) == "",
		strings.TrimSpace(req.Description) == "",
		strings.TrimSpace(req.Creator) == "",
		strings.TrimSpace(req.CreatorID) == "",
		req.ThumbnailURL == "",
		req.VideoURL == "",
		strings.TrimSpace(req.UploadDate) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required field"})
	case req.Price < 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v := model.Video{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Price:        req.Price,
		Creator:      req.Creator,
		CreatorID:    req.CreatorID,
		ThumbnailURL: req.ThumbnailURL,
		VideoURL:     req.VideoURL,
		Duration:     req.Duration,
		UploadDate:   req.UploadDate,
	}
	id, err := h.Videos.Create(ctx, &v)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create video"})
	}
	created, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create video"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "video": created})
}

// List returns the whole catalog, newest first.
func (h *VideoHandler) List(c echo.Context) error {
	videos, err := h.Videos.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch videos"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "videos": videos})
}

// Get returns one video; a malformed id reads the same as a missing one.
func (h *VideoHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}
	v, err := h.Videos.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch video"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "video": v})
}

// ListByCreator returns one creator's uploads, newest first.
func (h *VideoHandler) ListByCreator(c echo.Context) error {
	videos, err := h.Videos.ListByCreator(c.Request().Context(), c.Param("creatorId"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch creator videos"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "videos": videos})
}

// View bumps the playback counter and returns the updated record.
func (h *VideoHandler) View(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}
	v, err := h.Videos.IncrementViews(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to increment views"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "video": v})
}

// Access reports whether the current session may play a video: free
// videos always, premium only when unlocked for the signed-in user.
func (h *VideoHandler) Access(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}
	v, err := h.Videos.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch video"})
	}

	var user *model.User
	if userID, ok := middleware.SessionUserID(c); ok {
		if u, uerr := h.Users.GetByID(c.Request().Context(), userID); uerr == nil {
			user = &u
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "canView": access.CanView(v, user)})
}

// Delete removes a catalog entry and its CDN objects. The CDN deletes
// are best-effort: a storage failure is logged but never blocks
// removing the catalog row.
func (h *VideoHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	v, err := h.Videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete video"})
	}

	if name := path.Base(v.VideoURL); name != "" && name != "." && name != "/" {
		if derr := h.Storage.Delete(ctx, "videos/"+name); derr != nil {
			log.Printf("cdn delete failed for videos/%s: %v", name, derr)
		}
	}
	if name := path.Base(v.ThumbnailURL); name != "" && name != "." && name != "/" {
		if derr := h.Storage.Delete(ctx, "thumbnails/"+name); derr != nil {
			log.Printf("cdn delete failed for thumbnails/%s: %v", name, derr)
		}
	}

	if err := h.Videos.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete video"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
