package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/pairing"
)

type ingestItemReq struct {
	Category    string `json:"category"`
	Number      int    `json:"number"`
	WMFilename  string `json:"wm_filename"`
	WMURL       string `json:"wm_url"`
	RawFilename string `json:"raw_filename"`
	RawURL      string `json:"raw_url"`
	ListingID   string `json:"listing_id,omitempty"`
}

type ingestReq struct {
	Items []ingestItemReq `json:"items"`
	Post  bool            `json:"post"`
}

func (r ingestItemReq) toItem() (model.Item, error) {
	cat, err := model.ParseCategory(r.Category)
	if err != nil {
		return model.Item{}, err
	}
	if r.Number < 1 || r.Number > 999 {
		return model.Item{}, fmt.Errorf("number %d out of range", r.Number)
	}
	return model.Item{
		Code:        model.MakeItemCode(cat, r.Number),
		Category:    cat,
		Number:      r.Number,
		WMFilename:  r.WMFilename,
		WMURL:       r.WMURL,
		RawFilename: r.RawFilename,
		RawURL:      r.RawURL,
		ListingID:   r.ListingID,
	}, nil
}

// IngestItems upserts catalog items; post=true also lists the items
// that have no current listing.
func (h *AdminHandler) IngestItems(c echo.Context) error {
	var req ingestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items required"})
	}
	items := make([]model.Item, 0, len(req.Items))
	for i, in := range req.Items {
		it, err := in.toItem()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("item %d: %v", i, err)})
		}
		items = append(items, it)
	}
	n, err := h.Engine.IngestItems(c.Request().Context(), items, req.Post)
	if err != nil {
		return h.respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ingested": n})
}

type pairIngestReq struct {
	Category string             `json:"category"`
	Raw      []pairing.AssetRef `json:"raw"`
	WM       []pairing.AssetRef `json:"wm"`
	DryRun   bool               `json:"dry_run,omitempty"`
}

type pairPart struct {
	ItemCode    string `json:"item_code"`
	Number      int    `json:"number"`
	RawFilename string `json:"raw_filename"`
	WMFilename  string `json:"wm_filename"`
}

// PairIngest pairs two flat asset lists by filename-derived sequence
// number, upserts the matched items and posts listings for the ones
// not yet listed. dry_run=true previews the pairing without touching
// the catalog.
func (h *AdminHandler) PairIngest(c echo.Context) error {
	var req pairIngestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cat, err := model.ParseCategory(req.Category)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	pairs := pairing.Match(req.Raw, req.WM)
	parts := make([]pairPart, 0, len(pairs))
	items := make([]model.Item, 0, len(pairs))
	for _, p := range pairs {
		if p.Number > 999 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("sequence %d out of range", p.Number)})
		}
		code := model.MakeItemCode(cat, p.Number)
		parts = append(parts, pairPart{
			ItemCode:    code,
			Number:      p.Number,
			RawFilename: p.Raw.Filename,
			WMFilename:  p.WM.Filename,
		})
		items = append(items, model.Item{
			Code:        code,
			Category:    cat,
			Number:      p.Number,
			WMFilename:  p.WM.Filename,
			WMURL:       p.WM.URL,
			RawFilename: p.Raw.Filename,
			RawURL:      p.Raw.URL,
		})
	}

	resp := echo.Map{
		"pairs":         parts,
		"unmatched_raw": len(req.Raw) - len(parts),
		"unmatched_wm":  len(req.WM) - len(parts),
	}
	if req.DryRun {
		resp["ingested"] = 0
		return c.JSON(http.StatusOK, resp)
	}
	n, err := h.Engine.IngestItems(c.Request().Context(), items, true)
	if err != nil {
		return h.respondErr(c, err)
	}
	resp["ingested"] = n
	return c.JSON(http.StatusOK, resp)
}
