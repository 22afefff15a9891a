package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/linktrend/internal/access"
	"github.com/iliyamo/linktrend/internal/repository"
)

// RequireAdmin guards administrative endpoints. It assumes
// WithSession ran earlier in the chain. The session's user is
// re-fetched from the database on every request so a deleted account
// loses access immediately, and the resolved user's email is compared
// against the reserved administrative identity.
//
// Responses: 401 when there is no session or the session's user no
// longer exists, 403 when the user is not the administrator.
func RequireAdmin(users *repository.UserRepo, adminEmail string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := SessionUserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication failed"})
			}
			if !access.IsAdmin(&u, adminEmail) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
			}
			return next(c)
		}
	}
}
