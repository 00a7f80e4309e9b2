package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/platform"
)

// Grant tops up a claimant's balance: new total = old remaining +
// delta. The reason always takes the latest supplied value.
func (e *Engine) Grant(ctx context.Context, who model.Claimant, reason string, delta int) (int, error) {
	if delta <= 0 {
		return 0, fmt.Errorf("grant amount must be positive")
	}
	return e.setPicks(ctx, who, reason, delta, true)
}

// SetAbsolute replaces a claimant's balance outright.
func (e *Engine) SetAbsolute(ctx context.Context, who model.Claimant, reason string, remaining int) (int, error) {
	if remaining < 0 {
		return 0, fmt.Errorf("remaining must not be negative")
	}
	return e.setPicks(ctx, who, reason, remaining, false)
}

func (e *Engine) setPicks(ctx context.Context, who model.Claimant, reason string, amount int, additive bool) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin picks tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	total := amount
	if who.IsGuest() {
		entry, err := e.guests.GetTx(ctx, tx, who.Name)
		switch {
		case err == nil:
			if additive {
				total += entry.Remaining
			}
		case !errors.Is(err, sql.ErrNoRows):
			return 0, err
		}
		if err := e.guests.SetTx(ctx, tx, model.GuestPickEntry{Name: who.Name, Reason: reason, Remaining: total}); err != nil {
			return 0, err
		}
	} else {
		name := who.Name
		entry, err := e.picks.GetTx(ctx, tx, who.ID)
		switch {
		case err == nil:
			if additive {
				total += entry.Remaining
			}
			if name == "" {
				name = entry.Name
			}
		case !errors.Is(err, sql.ErrNoRows):
			return 0, err
		}
		if err := e.picks.SetTx(ctx, tx, model.PickEntry{ParticipantID: who.ID, Name: name, Reason: reason, Remaining: total}); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit picks: %w", err)
	}

	e.syncTier(ctx, who, total)
	return total, nil
}

// PickStatus reports a claimant's live reason and balance. ErrNoEntry
// when the claimant holds no ledger entry.
func (e *Engine) PickStatus(ctx context.Context, who model.Claimant) (string, int, error) {
	if who.IsGuest() {
		entry, err := e.guests.Get(ctx, who.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, ErrNoEntry
		}
		if err != nil {
			return "", 0, err
		}
		return entry.Reason, entry.Remaining, nil
	}
	entry, err := e.picks.Get(ctx, who.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, ErrNoEntry
	}
	if err != nil {
		return "", 0, err
	}
	return entry.Reason, entry.Remaining, nil
}

// balanceTx reads the claimant's ledger entry inside the transaction,
// filling in the stored display name when the caller did not supply
// one. Absence maps to ErrNoEntry.
func (e *Engine) balanceTx(ctx context.Context, tx *sql.Tx, who *model.Claimant) (string, int, error) {
	if who.IsGuest() {
		entry, err := e.guests.GetTx(ctx, tx, who.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, ErrNoEntry
		}
		if err != nil {
			return "", 0, err
		}
		return entry.Reason, entry.Remaining, nil
	}
	entry, err := e.picks.GetTx(ctx, tx, who.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, ErrNoEntry
	}
	if err != nil {
		return "", 0, err
	}
	if who.Name == "" {
		who.Name = entry.Name
	}
	return entry.Reason, entry.Remaining, nil
}

// Assign commits a claim on behalf of a claimant, staff-issued and
// signal-less. The claimant must hold picks and the item must be
// unclaimed. reasonOverride, when non-empty, replaces the reason on
// the claim row only; the ledger entry keeps its own.
func (e *Engine) Assign(ctx context.Context, who model.Claimant, itemCode, reasonOverride string) (model.Claim, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.state.Session()
	if !sess.Open() {
		return model.Claim{}, 0, ErrNoSession
	}
	item, err := e.items.GetByCode(ctx, itemCode)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Claim{}, 0, ErrUnknownItem
	}
	if err != nil {
		return model.Claim{}, 0, err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Claim{}, 0, fmt.Errorf("begin assign tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ledgerReason, current, err := e.balanceTx(ctx, tx, &who)
	if err != nil {
		return model.Claim{}, 0, err
	}
	if current <= 0 {
		return model.Claim{}, 0, ErrNoPicks
	}
	if _, err := e.claims.GetLiveByItemTx(ctx, tx, sess.ID, item.Code); err == nil {
		return model.Claim{}, 0, ErrItemClaimed
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.Claim{}, 0, err
	}

	claimReason := ledgerReason
	if reasonOverride != "" {
		claimReason = reasonOverride
	}
	claim, err := e.insertClaimTx(ctx, tx, sess.ID, who, claimReason, item)
	if err != nil {
		return model.Claim{}, 0, err
	}
	remaining, err := e.decrementTx(ctx, tx, who, ledgerReason, current)
	if err != nil {
		return model.Claim{}, 0, err
	}
	if err := e.items.ClearListingTx(ctx, tx, item.Code); err != nil {
		return model.Claim{}, 0, err
	}
	if err := tx.Commit(); err != nil {
		return model.Claim{}, 0, fmt.Errorf("commit assign: %w", err)
	}

	e.settleClaim(ctx, claim, item, remaining, false)
	return claim, remaining, nil
}

// RandomAssign commits a claim on a uniformly random unclaimed item of
// the category.
func (e *Engine) RandomAssign(ctx context.Context, who model.Claimant, cat model.Category) (model.Claim, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.state.Session()
	if !sess.Open() {
		return model.Claim{}, 0, ErrNoSession
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Claim{}, 0, fmt.Errorf("begin random assign tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	reason, current, err := e.balanceTx(ctx, tx, &who)
	if err != nil {
		return model.Claim{}, 0, err
	}
	if current <= 0 {
		return model.Claim{}, 0, ErrNoPicks
	}
	pool, err := e.items.UnclaimedByCategoryTx(ctx, tx, cat, sess.ID)
	if err != nil {
		return model.Claim{}, 0, err
	}
	if len(pool) == 0 {
		return model.Claim{}, 0, ErrNoUnclaimed
	}
	item := pool[e.randIndex(len(pool))]

	claim, err := e.insertClaimTx(ctx, tx, sess.ID, who, reason, item)
	if err != nil {
		return model.Claim{}, 0, err
	}
	remaining, err := e.decrementTx(ctx, tx, who, reason, current)
	if err != nil {
		return model.Claim{}, 0, err
	}
	if err := e.items.ClearListingTx(ctx, tx, item.Code); err != nil {
		return model.Claim{}, 0, err
	}
	if err := tx.Commit(); err != nil {
		return model.Claim{}, 0, fmt.Errorf("commit random assign: %w", err)
	}

	e.settleClaim(ctx, claim, item, remaining, false)
	return claim, remaining, nil
}

// ownedBy reports whether a claim belongs to the given claimant.
// Registered identity matches by id; guests match by exact name.
func ownedBy(c model.Claim, who model.Claimant) bool {
	if who.IsGuest() {
		return c.ParticipantID == nil && c.ClaimantName == who.Name
	}
	return c.ParticipantID != nil && *c.ParticipantID == who.ID
}

// Swap exchanges a claimant's claimed item for an unclaimed one of the
// same category. The pick balance does not move: the old claim is
// deleted and the new one inserted without a decrement.
func (e *Engine) Swap(ctx context.Context, who model.Claimant, oldCode, newCode string) (model.Claim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.state.Session()
	if !sess.Open() {
		return model.Claim{}, ErrNoSession
	}
	oldItem, err := e.items.GetByCode(ctx, oldCode)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Claim{}, ErrUnknownItem
	}
	if err != nil {
		return model.Claim{}, err
	}
	newItem, err := e.items.GetByCode(ctx, newCode)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Claim{}, ErrUnknownItem
	}
	if err != nil {
		return model.Claim{}, err
	}
	if oldItem.Category != newItem.Category {
		return model.Claim{}, ErrCategoryMismatch
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Claim{}, fmt.Errorf("begin swap tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	oldClaim, err := e.claims.GetLiveByItemTx(ctx, tx, sess.ID, oldItem.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Claim{}, ErrNotClaimed
	}
	if err != nil {
		return model.Claim{}, err
	}
	if !ownedBy(oldClaim, who) {
		return model.Claim{}, ErrNotClaimOwner
	}
	if _, err := e.claims.GetLiveByItemTx(ctx, tx, sess.ID, newItem.Code); err == nil {
		return model.Claim{}, ErrItemClaimed
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.Claim{}, err
	}

	if err := e.claims.DeleteTx(ctx, tx, oldClaim.ID); err != nil {
		return model.Claim{}, err
	}
	newClaim, err := e.insertClaimTx(ctx, tx, sess.ID, oldClaim.Claimant(), oldClaim.Reason, newItem)
	if err != nil {
		return model.Claim{}, err
	}
	if err := e.items.ClearListingTx(ctx, tx, newItem.Code); err != nil {
		return model.Claim{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Claim{}, fmt.Errorf("commit swap: %w", err)
	}

	if oldClaim.LogMessageID != "" {
		e.surfaceErr("log.delete", e.surface.DeleteLogMessage(ctx, sess.ID, oldClaim.LogMessageID))
	}
	oldItem.ListingID = ""
	e.repostListing(ctx, oldItem)
	if newItem.ListingID != "" {
		e.surfaceErr("listing.delete", e.surface.DeleteListing(ctx, newItem.Category, newItem.ListingID))
	}
	msgID, err := e.surface.AppendLog(ctx, sess.ID, platform.Message{Text: e.announcementText(newClaim, newItem.RawURL)})
	if !e.surfaceErr("log.append", err) {
		if err := e.claims.SetLogMessage(ctx, newClaim.ID, msgID); err != nil {
			log.Printf("claim: record announcement handle for claim %d: %v", newClaim.ID, err)
		}
	}
	return newClaim, nil
}

// Unassign reverses a committed claim: delete the claim row, refund
// one pick, take down the rendered announcement, repost the listing.
// Returns the refunded balance.
func (e *Engine) Unassign(ctx context.Context, who model.Claimant, itemCode string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.state.Session()
	if !sess.Open() {
		return 0, ErrNoSession
	}
	item, err := e.items.GetByCode(ctx, itemCode)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownItem
	}
	if err != nil {
		return 0, err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin unassign tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	claim, err := e.claims.GetLiveByItemTx(ctx, tx, sess.ID, item.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotClaimed
	}
	if err != nil {
		return 0, err
	}
	if !ownedBy(claim, who) {
		return 0, ErrNotClaimOwner
	}
	if err := e.claims.DeleteTx(ctx, tx, claim.ID); err != nil {
		return 0, err
	}

	var remaining int
	if who.IsGuest() {
		entry, err := e.guests.GetTx(ctx, tx, who.Name)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			entry = model.GuestPickEntry{Name: who.Name, Reason: claim.Reason}
		case err != nil:
			return 0, err
		}
		remaining = entry.Remaining + 1
		entry.Remaining = remaining
		if err := e.guests.SetTx(ctx, tx, entry); err != nil {
			return 0, err
		}
	} else {
		entry, err := e.picks.GetTx(ctx, tx, who.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			entry = model.PickEntry{ParticipantID: who.ID, Name: claim.ClaimantName, Reason: claim.Reason}
		case err != nil:
			return 0, err
		}
		remaining = entry.Remaining + 1
		entry.Remaining = remaining
		if err := e.picks.SetTx(ctx, tx, entry); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit unassign: %w", err)
	}

	e.syncTier(ctx, who, remaining)
	if claim.LogMessageID != "" {
		e.surfaceErr("log.delete", e.surface.DeleteLogMessage(ctx, sess.ID, claim.LogMessageID))
	}
	item.ListingID = ""
	e.repostListing(ctx, item)
	return remaining, nil
}

// IngestItems upserts catalog items and optionally posts listings for
// the unlisted ones. Re-ingesting an item keeps its current listing
// reference unless the input carries one.
func (e *Engine) IngestItems(ctx context.Context, items []model.Item, post bool) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var unlisted []model.Item
	for _, it := range items {
		if it.ListingID == "" {
			prev, err := e.items.GetByCode(ctx, it.Code)
			switch {
			case err == nil:
				it.ListingID = prev.ListingID
			case !errors.Is(err, sql.ErrNoRows):
				return 0, err
			}
		}
		if err := e.items.Upsert(ctx, it); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", it.Code, err)
		}
		if it.ListingID == "" {
			unlisted = append(unlisted, it)
		}
	}
	if post {
		for _, it := range unlisted {
			e.repostListing(ctx, it)
		}
	}
	return len(items), nil
}
