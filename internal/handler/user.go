package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/linktrend/internal/repository"
)

// UserHandler serves the admin user-management routes.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: u}
}

// List returns every account, newest first, each with its unlocked
// video set.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch users"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "users": users})
}

// Delete removes an account and its unlock grants. Payment records
// stay behind for the audit trail.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
