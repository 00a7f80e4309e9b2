package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/live-claims/internal/model"
)

// claimMarker opens every claim announcement. Rebuild deletion goes by
// stored message handles, so the marker exists only for humans scanning
// the log.
const claimMarker = "✅ **Item Claimed**"

const (
	openingBanner = "**start of claims**"
	rebuildBanner = "🗂️ **Sorted Claim Log (rebuilt)**\n*(RAW assets re-attached per claim)*"
	closingNotice = "🧾 **Show ended. Claims are now closed.**"

	holdersTrailer = "🏁 **Participants with picks remaining**"
	guestsTrailer  = "🏁 **Guests with picks remaining**"

	noEntryNotice = "❌ You can't claim items right now (no pick entry)."
	noPicksNotice = "❌ You don't have any picks remaining."
)

func claimedNotice(code string) string {
	return fmt.Sprintf("❌ Item %s was already claimed.", code)
}

// announcementText renders the canonical claim announcement. The live
// claim path and the rebuild both use it, so a rebuild with no new
// claims reproduces its previous output byte for byte.
func (e *Engine) announcementText(c model.Claim, rawURL string) string {
	link := rawURL
	if link == "" {
		link = "*(missing)*"
	}
	var b strings.Builder
	b.WriteString(claimMarker + "\n")
	fmt.Fprintf(&b, "- **Claimant:** `%s`\n", c.ClaimantName)
	fmt.Fprintf(&b, "- **Category:** %s\n", e.categoryLabel(c.Category))
	fmt.Fprintf(&b, "- **Reason:** %s\n", c.Reason)
	fmt.Fprintf(&b, "- **Item:** Item #%s\n", c.ItemCode)
	fmt.Fprintf(&b, "- **WM Filename:** %s\n", c.WMFilename)
	fmt.Fprintf(&b, "- **RAW Filename:** %s\n", c.RawFilename)
	fmt.Fprintf(&b, "- **Timestamp (UTC):** %s\n", c.ClaimedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- **RAW Link:** %s", link)
	return b.String()
}

// confirmNotice is the private confirmation sent to a registered
// claimant after an accepted signal.
func (e *Engine) confirmNotice(c model.Claim, remaining int) string {
	return fmt.Sprintf(
		"✅ Claim confirmed!\n- Category: %s\n- Item: %s\n- Reason: %s\n- Picks left: %d\n- Timestamp (UTC): %s",
		e.categoryLabel(c.Category), c.ItemCode, c.Reason, remaining, c.ClaimedAt.UTC().Format(time.RFC3339))
}

// claimantHeader renders the per-claimant group header of the rebuilt
// log. Remaining picks and reason appear only while any picks remain.
func claimantHeader(name string, count, remaining int, reason string) string {
	h := fmt.Sprintf("👤 **%s** — Claimed: **%d**", name, count)
	if remaining > 0 {
		h += fmt.Sprintf(" | Picks remaining: **%d**", remaining)
		if reason != "" {
			h += " | Reason: " + reason
		}
	}
	return h
}

func holderLine(name string, remaining int, reason string) string {
	return fmt.Sprintf("- %s: **%d** remaining | Reason: %s", name, remaining, reason)
}

// listingText renders a public listing for an item: its code plus the
// watermarked asset the platform shows as the preview.
func listingText(it model.Item) string {
	if it.WMURL == "" {
		return "Item " + it.Code
	}
	return fmt.Sprintf("Item %s\n%s", it.Code, it.WMURL)
}
