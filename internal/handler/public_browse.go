// Public browsing endpoints. These routes let viewers follow the show
// without authentication: the item catalog with live claim status and
// the session pointer. Staff-only fields (raw asset locations, listing
// handles) are filtered from responses.

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/repository"
	"github.com/iliyamo/live-claims/internal/state"
)

// PublicHandler aggregates what the unauthenticated reads need. Reads
// go straight to the repositories; the engine lock guards commands
// only, and a slightly stale catalog snapshot is acceptable here.
type PublicHandler struct {
	Items  *repository.ItemRepo
	Claims *repository.ClaimRepo
	State  *state.Coordinator
}

func NewPublicHandler(items *repository.ItemRepo, claims *repository.ClaimRepo, st *state.Coordinator) *PublicHandler {
	return &PublicHandler{Items: items, Claims: claims, State: st}
}

// PublicItem is a catalog entry with its claim status. Only the
// watermarked asset is exposed; raw locations stay staff-side.
type PublicItem struct {
	Code       string `json:"code"`
	Category   string `json:"category"`
	Number     int    `json:"number"`
	WMFilename string `json:"wm_filename,omitempty"`
	WMURL      string `json:"wm_url,omitempty"`
	Listed     bool   `json:"listed"`
	Claimed    bool   `json:"claimed"`
	ClaimedBy  string `json:"claimed_by,omitempty"`
}

// GetCatalog lists the catalog with per-item claim status for the open
// session. Without a session every item reads unclaimed. The optional
// ?category=N|S filter narrows the listing.
func (h *PublicHandler) GetCatalog(c echo.Context) error {
	ctx := c.Request().Context()

	var filter model.Category
	if raw := strings.TrimSpace(c.QueryParam("category")); raw != "" {
		cat, err := model.ParseCategory(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		filter = cat
	}

	items, err := h.Items.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	claimedBy := map[string]string{}
	if sess := h.State.Session(); sess.Open() {
		claims, err := h.Claims.ListBySession(ctx, sess.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		for _, cl := range claims {
			claimedBy[cl.ItemCode] = cl.ClaimantName
		}
	}

	out := make([]PublicItem, 0, len(items))
	for _, it := range items {
		if filter != "" && it.Category != filter {
			continue
		}
		name, claimed := claimedBy[it.Code]
		out = append(out, PublicItem{
			Code:       it.Code,
			Category:   string(it.Category),
			Number:     it.Number,
			WMFilename: it.WMFilename,
			WMURL:      it.WMURL,
			Listed:     it.ListingID != "",
			Claimed:    claimed,
			ClaimedBy:  name,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetSessionStatus reports whether claims are currently open.
func (h *PublicHandler) GetSessionStatus(c echo.Context) error {
	sess := h.State.Session()
	panicSt := h.State.Panic()
	return c.JSON(http.StatusOK, echo.Map{
		"open":       sess.Open(),
		"session_id": sess.ID,
		"paused":     panicSt.Enabled,
	})
}
