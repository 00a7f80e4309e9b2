package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-claims/internal/model"
)

// forceReq is the body of every gated lifecycle command. force=true
// bypasses the two-step confirmation, for scripted operation.
type forceReq struct {
	Force bool `json:"force,omitempty"`
}

type panicPart struct {
	Enabled bool      `json:"enabled"`
	Actor   string    `json:"actor,omitempty"`
	At      time.Time `json:"at,omitempty"`
}

func panicPartFrom(st model.PanicState) panicPart {
	return panicPart{Enabled: st.Enabled, Actor: st.Actor, At: st.At}
}

// StartSession opens a claiming cycle: wipes the previous ledger,
// creates the session log and unlocks the boards. Gated unless forced.
func (h *AdminHandler) StartSession(c echo.Context) error {
	var req forceReq
	_ = c.Bind(&req)
	id, err := h.Engine.StartSession(c.Request().Context(), actorFrom(c), req.Force)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"session_id": id})
}

// EndSession closes the open cycle: final rebuild, closing notice,
// frozen log, locked boards. Gated unless forced.
func (h *AdminHandler) EndSession(c echo.Context) error {
	var req forceReq
	_ = c.Bind(&req)
	if err := h.Engine.EndSession(c.Request().Context(), actorFrom(c), req.Force); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "closed"})
}

// Wipe clears items, picks and claims outside a session. Gated unless
// forced; refused outright while a session is open.
func (h *AdminHandler) Wipe(c echo.Context) error {
	var req forceReq
	_ = c.Bind(&req)
	if err := h.Engine.Wipe(c.Request().Context(), actorFrom(c), req.Force); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "wiped"})
}

// PanicOn raises the emergency stop. Gated unless forced.
func (h *AdminHandler) PanicOn(c echo.Context) error {
	var req forceReq
	_ = c.Bind(&req)
	st, err := h.Engine.SetPanic(c.Request().Context(), true, actorFrom(c), req.Force)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, panicPartFrom(st))
}

// PanicOff lowers the emergency stop. Disabling is never gated.
func (h *AdminHandler) PanicOff(c echo.Context) error {
	st, err := h.Engine.SetPanic(c.Request().Context(), false, actorFrom(c), false)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, panicPartFrom(st))
}

// PanicStatus reports the emergency stop state.
func (h *AdminHandler) PanicStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, panicPartFrom(h.Engine.PanicStatus()))
}

// SessionStatus reports whether a session is open and which one.
func (h *AdminHandler) SessionStatus(c echo.Context) error {
	sess := h.Engine.SessionStatus()
	return c.JSON(http.StatusOK, echo.Map{
		"open":       sess.Open(),
		"session_id": sess.ID,
	})
}

// Rebuild rewrites the session log as the sorted grouped projection.
func (h *AdminHandler) Rebuild(c echo.Context) error {
	if err := h.Engine.Rebuild(c.Request().Context()); err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "rebuilt"})
}
