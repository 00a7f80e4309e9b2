package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-claims/internal/model"
)

type grantReq struct {
	claimantRef
	Reason string `json:"reason"`
	Amount int    `json:"amount"`
}

type setPicksReq struct {
	claimantRef
	Reason    string `json:"reason"`
	Remaining int    `json:"remaining"`
}

type pickStatusResp struct {
	ClaimantName string `json:"claimant_name,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Remaining    int    `json:"remaining"`
}

// GrantPicks tops up a claimant's balance; the reason replaces the
// stored one.
func (h *AdminHandler) GrantPicks(c echo.Context) error {
	var req grantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	who, err := req.resolve()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	total, err := h.Engine.Grant(c.Request().Context(), who, req.Reason, req.Amount)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, pickStatusResp{ClaimantName: who.Name, Reason: req.Reason, Remaining: total})
}

// SetPicks replaces a claimant's balance outright.
func (h *AdminHandler) SetPicks(c echo.Context) error {
	var req setPicksReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	who, err := req.resolve()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	total, err := h.Engine.SetAbsolute(c.Request().Context(), who, req.Reason, req.Remaining)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, pickStatusResp{ClaimantName: who.Name, Reason: req.Reason, Remaining: total})
}

// PickStatus reports the live balance. Query by ?participant_id= for
// registered claimants or ?guest_name= for guests.
func (h *AdminHandler) PickStatus(c echo.Context) error {
	var who model.Claimant
	if name := strings.TrimSpace(c.QueryParam("guest_name")); name != "" {
		who = model.GuestClaimant(name)
	} else {
		id, err := strconv.ParseUint(c.QueryParam("participant_id"), 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "participant_id or guest_name required"})
		}
		who = model.RegisteredClaimant(id, "")
	}
	reason, remaining, err := h.Engine.PickStatus(c.Request().Context(), who)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, pickStatusResp{ClaimantName: who.Name, Reason: reason, Remaining: remaining})
}
