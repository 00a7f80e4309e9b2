package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-claims/internal/handler"
	"github.com/iliyamo/live-claims/internal/middleware"
	"github.com/iliyamo/live-claims/internal/model"
)

// RegisterAuth registers the staff auth endpoints. Token issue and
// exchange live under /v1/auth without middleware; /v1/me needs a
// valid access token of either role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout validates the refresh token itself so it stays reachable
	// after the access token expired.
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleViewer),
	)
	auth.GET("/me", a.Me)
}
