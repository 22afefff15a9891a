package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/linktrend/internal/session"
)

// Context keys set by WithSession for downstream middleware and
// handlers.
const (
	CtxUserID = "session_user_id" // uint64
	CtxEmail  = "session_email"   // string
)

// WithSession resolves the session cookie, when present, and stores
// the bound identity in the request context. It never rejects a
// request: anonymous callers simply proceed without an identity, and
// it is up to RequireAdmin or individual handlers to demand one.
func WithSession(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}
			data, err := store.Get(c.Request().Context(), cookie.Value)
			if err != nil {
				// Expired or revoked token; treat as anonymous.
				return next(c)
			}
			c.Set(CtxUserID, data.UserID)
			c.Set(CtxEmail, data.Email)
			return next(c)
		}
	}
}

// SessionUserID extracts the authenticated user id from the context.
// The second return is false for anonymous requests.
func SessionUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	return id, ok
}
