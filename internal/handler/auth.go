package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/linktrend/internal/auth"
	"github.com/iliyamo/linktrend/internal/config"
	"github.com/iliyamo/linktrend/internal/model"
	"github.com/iliyamo/linktrend/internal/repository"
	"github.com/iliyamo/linktrend/internal/session"
	"github.com/iliyamo/linktrend/internal/utils"
)

// AuthHandler bundles dependencies for the login, verify and logout
// endpoints. Two login paths exist: Google ID-token exchange for
// ordinary users, and the configured admin credential pair for the
// reserved administrator account. Both end in the same place — a
// server-side session bound to a user row.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *session.Store
	Verifier *auth.GoogleVerifier
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *session.Store, v *auth.GoogleVerifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Verifier: v}
}

// ----- DTOs -----

type loginReq struct {
	Credential string `json:"credential"` // Google ID token
	Username   string `json:"username"`   // admin credential login
	Password   string `json:"password"`
}

// Login exchanges either a Google credential or the admin
// username/password for a session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Credential != "" {
		return h.googleLogin(c, req.Credential)
	}
	if req.Username != "" || req.Password != "" {
		return h.adminLogin(c, req.Username, req.Password)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "credential or username/password required"})
}

// AdminLogin serves the dedicated admin login route; same logic as a
// username/password Login call.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	return h.adminLogin(c, req.Username, req.Password)
}

func (h *AuthHandler) googleLogin(c echo.Context, credential string) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ident, err := h.Verifier.Verify(ctx, credential)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "failed to verify credentials"})
	}

	u, err := h.Users.GetByEmail(ctx, ident.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		var avatar *string
		if ident.Avatar != "" {
			avatar = &ident.Avatar
		}
		uid, cerr := h.Users.Create(ctx, ident.Name, ident.Email, avatar)
		if cerr != nil && !errors.Is(cerr, repository.ErrEmailExists) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
		// On ErrEmailExists a concurrent login won the race; re-fetch
		// covers both outcomes.
		if cerr == nil {
			u, err = h.Users.GetByID(ctx, uid)
		} else {
			u, err = h.Users.GetByEmail(ctx, ident.Email)
		}
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return h.issueSession(c, u)
}

func (h *AuthHandler) adminLogin(c echo.Context, username, password string) error {
	if h.Cfg.AdminUsername == "" || (h.Cfg.AdminPassword == "" && h.Cfg.AdminPassHash == "") {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "admin login not configured"})
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(h.Cfg.AdminUsername)) != 1 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	// Prefer the bcrypt hash when configured; the plain comparison is
	// the development fallback.
	if h.Cfg.AdminPassHash != "" {
		if !utils.VerifyPassword(h.Cfg.AdminPassHash, password) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
	} else if subtle.ConstantTimeCompare([]byte(password), []byte(h.Cfg.AdminPassword)) != 1 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, h.Cfg.AdminEmail)
	if errors.Is(err, repository.ErrUserNotFound) {
		uid, cerr := h.Users.Create(ctx, "System Administrator", h.Cfg.AdminEmail, nil)
		if cerr != nil && !errors.Is(cerr, repository.ErrEmailExists) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create admin user failed"})
		}
		if cerr == nil {
			u, err = h.Users.GetByID(ctx, uid)
		} else {
			u, err = h.Users.GetByEmail(ctx, h.Cfg.AdminEmail)
		}
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return h.issueSession(c, u)
}

func (h *AuthHandler) issueSession(c echo.Context, u model.User) error {
	token, err := h.Sessions.Create(c.Request().Context(), session.Data{UserID: u.ID, Email: u.Email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	c.SetCookie(h.sessionCookie(token, h.Sessions.TTL()))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}

// Verify resolves the session cookie to the current user. It always
// answers 200: clients poll this endpoint on load and an anonymous
// visitor is not an error.
func (h *AuthHandler) Verify(c echo.Context) error {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "user": nil})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	data, err := h.Sessions.Get(ctx, cookie.Value)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "user": nil})
	}
	u, err := h.Users.GetByID(ctx, data.UserID)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "user": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}

// Logout revokes the server-side session and expires the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		if derr := h.Sessions.Delete(c.Request().Context(), cookie.Value); derr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to logout"})
		}
	}
	c.SetCookie(h.sessionCookie("", -time.Hour))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AuthHandler) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.EqualFold(h.Cfg.Env, "prod"),
	}
}
