package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/service"
)

// AdminHandler exposes the staff command surface over HTTP. Every
// method assumes JWTAuth and the STAFF role check already ran.
type AdminHandler struct {
	Engine *service.Engine
}

func NewAdminHandler(eng *service.Engine) *AdminHandler {
	return &AdminHandler{Engine: eng}
}

// claimantRef identifies a claimant in request bodies: a registered
// participant id (name optional, for display) or a guest known only by
// name.
type claimantRef struct {
	ParticipantID uint64 `json:"participant_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Guest         bool   `json:"guest,omitempty"`
}

func (r claimantRef) resolve() (model.Claimant, error) {
	if r.Guest {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return model.Claimant{}, fmt.Errorf("guest claimant needs a name")
		}
		return model.GuestClaimant(name), nil
	}
	if r.ParticipantID == 0 {
		return model.Claimant{}, fmt.Errorf("participant_id required")
	}
	return model.RegisteredClaimant(r.ParticipantID, strings.TrimSpace(r.Name)), nil
}

// actorFrom derives the confirmation-gate actor from the JWT subject.
// Numeric claims arrive as float64 after JSON decoding.
func actorFrom(c echo.Context) string {
	switch v := c.Get("account_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	return "staff"
}

// rejectionStatus maps protocol rejections onto HTTP status codes:
// missing things are 404, state conflicts 409, the rest input errors.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNoEntry),
		errors.Is(err, service.ErrUnknownItem),
		errors.Is(err, service.ErrNotClaimed),
		errors.Is(err, service.ErrListingUnknown):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoSession),
		errors.Is(err, service.ErrSessionOpen),
		errors.Is(err, service.ErrPanicEnabled),
		errors.Is(err, service.ErrNoPicks),
		errors.Is(err, service.ErrItemClaimed),
		errors.Is(err, service.ErrNotClaimOwner),
		errors.Is(err, service.ErrCategoryMismatch),
		errors.Is(err, service.ErrNoUnclaimed):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// respondErr renders an engine failure. Confirmation arming is not a
// failure proper, so it maps to 202 with the re-invoke window.
func (h *AdminHandler) respondErr(c echo.Context, err error) error {
	if errors.Is(err, service.ErrConfirmRequired) {
		secs := h.Engine.ConfirmWindow()
		return c.JSON(http.StatusAccepted, echo.Map{
			"status":         "confirm_required",
			"message":        fmt.Sprintf("repeat the command within %d seconds to confirm", secs),
			"window_seconds": secs,
		})
	}
	if service.IsRejection(err) {
		return c.JSON(rejectionStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// claimPart is the wire shape of a committed claim.
type claimPart struct {
	ItemCode      string    `json:"item_code"`
	ItemNumber    int       `json:"item_number"`
	Category      string    `json:"category"`
	ClaimantName  string    `json:"claimant_name"`
	ParticipantID uint64    `json:"participant_id,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	ClaimedAt     time.Time `json:"claimed_at"`
}

func claimPartFrom(cl model.Claim) claimPart {
	p := claimPart{
		ItemCode:     cl.ItemCode,
		ItemNumber:   cl.ItemNumber,
		Category:     string(cl.Category),
		ClaimantName: cl.ClaimantName,
		Reason:       cl.Reason,
		ClaimedAt:    cl.ClaimedAt,
	}
	if cl.ParticipantID != nil {
		p.ParticipantID = *cl.ParticipantID
	}
	return p
}

// ----- claim commands -----

type assignReq struct {
	claimantRef
	ItemCode       string `json:"item_code"`
	ReasonOverride string `json:"reason_override,omitempty"`
}

// AssignClaim commits a claim on a claimant's behalf without a signal.
func (h *AdminHandler) AssignClaim(c echo.Context) error {
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	who, err := req.resolve()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	claim, remaining, err := h.Engine.Assign(c.Request().Context(), who, req.ItemCode, req.ReasonOverride)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"claim":           claimPartFrom(claim),
		"picks_remaining": remaining,
	})
}

type randomReq struct {
	claimantRef
	Category string `json:"category"`
}

// RandomClaim draws an unclaimed item from a category and assigns it.
func (h *AdminHandler) RandomClaim(c echo.Context) error {
	var req randomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	who, err := req.resolve()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cat, err := model.ParseCategory(req.Category)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	claim, remaining, err := h.Engine.RandomAssign(c.Request().Context(), who, cat)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"claim":           claimPartFrom(claim),
		"picks_remaining": remaining,
	})
}

type guestAssignReq struct {
	Name           string `json:"name"`
	ItemCode       string `json:"item_code"`
	ReasonOverride string `json:"reason_override,omitempty"`
}

// GuestAssign is AssignClaim for guests addressed by display name.
func (h *AdminHandler) GuestAssign(c echo.Context) error {
	var req guestAssignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	who, err := claimantRef{Guest: true, Name: req.Name}.resolve()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	claim, remaining, err := h.Engine.Assign(c.Request().Context(), who, req.ItemCode, req.ReasonOverride)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"claim":           claimPartFrom(claim),
		"picks_remaining": remaining,
	})
}

type guestRandomReq struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// GuestRandom is RandomClaim for guests addressed by display name.
func (h *AdminHandler) GuestRandom(c echo.Context) error {
	var req guestRandomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	who, err := claimantRef{Guest: true, Name: req.Name}.resolve()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cat, err := model.ParseCategory(req.Category)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	claim, remaining, err := h.Engine.RandomAssign(c.Request().Context(), who, cat)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"claim":           claimPartFrom(claim),
		"picks_remaining": remaining,
	})
}

type swapReq struct {
	claimantRef
	OldCode string `json:"old_code"`
	NewCode string `json:"new_code"`
}

// SwapClaim moves a claim to another unclaimed item in the same
// category without touching the pick balance.
func (h *AdminHandler) SwapClaim(c echo.Context) error {
	var req swapReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	who, err := req.resolve()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	claim, err := h.Engine.Swap(c.Request().Context(), who, req.OldCode, req.NewCode)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"claim": claimPartFrom(claim)})
}

type unassignReq struct {
	claimantRef
	ItemCode string `json:"item_code"`
}

// UnassignClaim reverses a claim: the row is deleted, the pick comes
// back and the item is listed again.
func (h *AdminHandler) UnassignClaim(c echo.Context) error {
	var req unassignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	who, err := req.resolve()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	remaining, err := h.Engine.Unassign(c.Request().Context(), who, req.ItemCode)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"picks_remaining": remaining})
}

// ExportClaims streams the claim ledger as a CSV attachment.
// ?scope=session (default) needs an open session; ?scope=all dumps
// every recorded claim.
func (h *AdminHandler) ExportClaims(c echo.Context) error {
	scope := c.QueryParam("scope")
	if scope != "" && scope != "session" && scope != "all" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scope must be session or all"})
	}
	body, filename, err := h.Engine.ExportClaims(c.Request().Context(), scope)
	if err != nil {
		return h.respondErr(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", body)
}
