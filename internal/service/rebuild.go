package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/platform"
)

// Rebuild regenerates the rendered claim log from ledger state and is
// always safe to run: previous projection messages are deleted by
// their stored handles, then the grouped log is re-emitted in full.
// Two consecutive runs with no intervening claims produce byte-equal
// text. The rendered log is never authoritative; this is how it stays
// disposable.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.state.Session()
	if !sess.Open() {
		return ErrNoSession
	}
	return e.rebuildLocked(ctx, sess.ID)
}

// rebuildLocked does the actual projection under e.mu.
func (e *Engine) rebuildLocked(ctx context.Context, sessionID string) error {
	claims, err := e.claims.ListBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("read claims: %w", err)
	}

	// Tear down the previous rendering by stored handle. A handle the
	// surface no longer resolves is already gone; keep going.
	deleted := 0
	for _, c := range claims {
		if c.LogMessageID == "" {
			continue
		}
		if !e.surfaceErr("log.delete", e.surface.DeleteLogMessage(ctx, sessionID, c.LogMessageID)) {
			deleted++
		}
		if err := e.claims.SetLogMessage(ctx, c.ID, ""); err != nil {
			return fmt.Errorf("clear announcement handle: %w", err)
		}
	}
	handles, err := e.renders.List(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("read render log: %w", err)
	}
	for _, h := range handles {
		if !e.surfaceErr("log.delete", e.surface.DeleteLogMessage(ctx, sessionID, h)) {
			deleted++
		}
	}
	if err := e.renders.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("clear render log: %w", err)
	}

	if len(claims) == 0 {
		log.Printf("rebuild: session %s: deleted %d messages, no claims to repost", sessionID, deleted)
		return nil
	}

	// post appends one projection message and records its handle so
	// the next rebuild can delete it.
	post := func(text string) {
		id, err := e.surface.AppendLog(ctx, sessionID, platform.Message{Text: text})
		if e.surfaceErr("log.append", err) {
			return
		}
		if err := e.renders.Add(ctx, sessionID, id); err != nil {
			log.Printf("rebuild: record handle: %v", err)
		}
	}

	post(rebuildBanner)

	// Group by claimant identity in first-seen order. The claims are
	// already sorted case-insensitively by name then item number, so
	// groups come out alphabetical and their claims numerically.
	type groupKey struct {
		pid  uint64
		name string
	}
	var order []groupKey
	groups := make(map[groupKey][]model.Claim)
	for _, c := range claims {
		var k groupKey
		if c.ParticipantID != nil {
			k.pid = *c.ParticipantID
		} else {
			k.name = c.ClaimantName
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], c)
	}

	rebuilt := 0
	for _, k := range order {
		group := groups[k]
		who := group[0].Claimant()

		reason, remaining, err := e.PickStatus(ctx, who)
		if err != nil && !errors.Is(err, ErrNoEntry) {
			return fmt.Errorf("read balance for %s: %w", who.Name, err)
		}
		post(claimantHeader(group[0].ClaimantName, len(group), remaining, reason))

		for _, c := range group {
			rawURL := ""
			if it, err := e.items.GetByCode(ctx, c.ItemCode); err == nil {
				rawURL = it.RawURL
			}
			msg := platform.Message{Text: e.announcementText(c, rawURL)}
			if rawURL != "" {
				data, err := e.fetcher.Fetch(ctx, rawURL)
				if err != nil {
					log.Printf("rebuild: fetch raw asset for %s: %v; falling back to link", c.ItemCode, err)
				} else {
					msg.AttachmentName = c.RawFilename
					msg.Attachment = data
				}
			}
			id, err := e.surface.AppendLog(ctx, sessionID, msg)
			if e.surfaceErr("log.append", err) {
				continue
			}
			if err := e.claims.SetLogMessage(ctx, c.ID, id); err != nil {
				return fmt.Errorf("record announcement handle: %w", err)
			}
			rebuilt++
		}
	}

	holders, err := e.picks.ListHolders(ctx)
	if err != nil {
		return fmt.Errorf("list pick holders: %w", err)
	}
	if len(holders) > 0 {
		post(holdersTrailer)
		for _, h := range holders {
			post(holderLine(h.Name, h.Remaining, h.Reason))
		}
	}
	guests, err := e.guests.ListHolders(ctx)
	if err != nil {
		return fmt.Errorf("list guest holders: %w", err)
	}
	if len(guests) > 0 {
		post(guestsTrailer)
		for _, g := range guests {
			post(holderLine(g.Name, g.Remaining, g.Reason))
		}
	}

	log.Printf("rebuild: session %s: deleted %d, reposted %d claim messages", sessionID, deleted, rebuilt)
	return nil
}
