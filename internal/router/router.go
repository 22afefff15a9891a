// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/linktrend/internal/handler"
	"github.com/iliyamo/linktrend/internal/middleware"
	"github.com/iliyamo/linktrend/internal/repository"
)

// RegisterRoutes registers routes that do not belong to any feature
// group. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the login, verify and logout endpoints plus
// the dedicated admin login alias.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api/auth")
	g.POST("/login", a.Login)
	g.GET("/verify", a.Verify)
	g.POST("/logout", a.Logout)

	e.POST("/api/admin/login", a.AdminLogin)
}

// RegisterVideos registers the public catalog endpoints and, on the
// admin group, catalog deletion.
func RegisterVideos(e *echo.Echo, admin *echo.Group, v *handler.VideoHandler) {
	g := e.Group("/api/videos")
	g.POST("", v.Create)
	g.GET("", v.List)
	g.GET("/:id", v.Get)
	g.GET("/:id/access", v.Access)
	g.GET("/creator/:creatorId", v.ListByCreator)
	g.POST("/:id/view", v.View)

	admin.DELETE("/api/videos/:id", v.Delete)
}

// RegisterUploads registers the media upload proxy and the storage
// diagnostics route. Uploads carry raw video files, so the body limit
// is lifted well above Echo's default.
func RegisterUploads(e *echo.Echo, u *handler.UploadHandler) {
	g := e.Group("/api/upload", echomw.BodyLimit("500M"))
	g.POST("/video", u.Video)
	g.POST("/thumbnail", u.Thumbnail)

	e.GET("/api/bunny/test", u.Test)
}

// RegisterTransactions registers payment submission (rate limited)
// and, on the admin group, the review endpoints.
func RegisterTransactions(e *echo.Echo, admin *echo.Group, t *handler.TransactionHandler, limiter echo.MiddlewareFunc) {
	e.POST("/api/transactions", t.Submit, limiter)

	admin.GET("/api/transactions", t.List)
	admin.GET("/api/transactions/pending", t.ListPending)
	admin.POST("/api/transactions/:id/approve", t.Approve)
	admin.POST("/api/transactions/:id/reject", t.Reject)
}

// RegisterUsers registers the admin user-management endpoints.
func RegisterUsers(admin *echo.Group, u *handler.UserHandler) {
	admin.GET("/api/users", u.List)
	admin.DELETE("/api/users/:id", u.Delete)
}

// AdminGroup builds the route group every admin endpoint hangs off:
// a valid session resolving to the configured administrator account.
func AdminGroup(e *echo.Echo, users *repository.UserRepo, adminEmail string) *echo.Group {
	return e.Group("", middleware.RequireAdmin(users, adminEmail))
}
