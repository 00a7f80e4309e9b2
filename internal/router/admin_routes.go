package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-claims/internal/handler"
	"github.com/iliyamo/live-claims/internal/middleware"
	"github.com/iliyamo/live-claims/internal/model"
)

// RegisterAdmin registers the staff command surface under /v1/admin.
// Every route requires a valid JWT with the STAFF role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff),
	)

	// ---- Picks ----
	g.POST("/picks/grant", h.GrantPicks)
	g.POST("/picks/set", h.SetPicks)
	g.GET("/picks/status", h.PickStatus)

	// ---- Claims ----
	g.POST("/claims/assign", h.AssignClaim)
	g.POST("/claims/random", h.RandomClaim)
	g.POST("/claims/guest-assign", h.GuestAssign)
	g.POST("/claims/guest-random", h.GuestRandom)
	g.POST("/claims/swap", h.SwapClaim)
	g.POST("/claims/unassign", h.UnassignClaim)
	g.GET("/claims/export", h.ExportClaims)

	// ---- Session lifecycle ----
	g.POST("/session/start", h.StartSession)
	g.POST("/session/end", h.EndSession)
	g.GET("/session", h.SessionStatus)
	g.POST("/wipe", h.Wipe)
	g.POST("/rebuild", h.Rebuild)

	// ---- Panic switch ----
	g.POST("/panic/on", h.PanicOn)
	g.POST("/panic/off", h.PanicOff)
	g.GET("/panic", h.PanicStatus)

	// ---- Catalog ingest ----
	g.POST("/items/ingest", h.IngestItems)
	g.POST("/items/pair", h.PairIngest)
}
