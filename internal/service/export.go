package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/iliyamo/live-claims/internal/model"
)

// exportHeader is the fixed column set of the claims dump. Participant
// id is blank for guest claims.
var exportHeader = []string{
	"claimed_at_utc", "participant_id", "claimant_name", "reason",
	"category", "item_code", "item_number", "raw_filename", "wm_filename",
	"session_id",
}

// ExportClaims dumps claim records as CSV in acceptance order. Scope
// "session" (the default) covers the open session and requires one;
// "all" covers every recorded claim. Returns the file body and a
// timestamped filename.
func (e *Engine) ExportClaims(ctx context.Context, scope string) ([]byte, string, error) {
	var (
		claims []model.Claim
		err    error
	)
	switch scope {
	case "all":
		claims, err = e.claims.ListAll(ctx)
	case "", "session":
		sess := e.state.Session()
		if !sess.Open() {
			return nil, "", ErrNoSession
		}
		claims, err = e.claims.ListBySessionChrono(ctx, sess.ID)
	default:
		return nil, "", fmt.Errorf("unknown export scope %q", scope)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read claims: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, "", err
	}
	for _, c := range claims {
		pid := ""
		if c.ParticipantID != nil {
			pid = strconv.FormatUint(*c.ParticipantID, 10)
		}
		rec := []string{
			c.ClaimedAt.UTC().Format(time.RFC3339),
			pid,
			c.ClaimantName,
			c.Reason,
			string(c.Category),
			c.ItemCode,
			strconv.Itoa(c.ItemNumber),
			c.RawFilename,
			c.WMFilename,
			c.SessionID,
		}
		if err := w.Write(rec); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("claims_%s_utc.csv", e.now().UTC().Format("20060102_150405"))
	return buf.Bytes(), name, nil
}
