// Package service implements the claim engine: the event-driven claim
// protocol, the staff claim commands, pick ledger management, session
// lifecycle, the rebuild projection and the CSV export. The database
// is the single source of truth throughout; everything rendered on the
// chat surface is disposable and reproducible from it.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/live-claims/internal/confirm"
	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/platform"
	"github.com/iliyamo/live-claims/internal/repository"
	"github.com/iliyamo/live-claims/internal/state"
)

// Options carries the show-profile knobs the engine needs.
type Options struct {
	// AcceptedSignals is the set of signal kinds treated as claim
	// intent; any other kind is ignored.
	AcceptedSignals []string
	// CategoryLabels overrides how category tags render; missing
	// entries fall back to the tag letter itself.
	CategoryLabels map[model.Category]string
	// TierPrefix names the visible rank ("Winner 3" with the default).
	TierPrefix string
	// Registry receives the engine metrics; nil means the default
	// prometheus registry.
	Registry prometheus.Registerer
}

// Signal is one inbound claim intent decoded from the broker.
type Signal struct {
	ListingID     string
	ParticipantID uint64
	ClaimantName  string
	Kind          string
}

// Engine owns the claim ledger state machines. One mutex guards every
// check-then-act sequence (signal handling, staff commands, lifecycle
// transitions, rebuilds) so the already-claimed check and the commit
// can never interleave between two commands, whichever path they
// arrive on.
type Engine struct {
	mu sync.Mutex

	db       *sql.DB
	items    *repository.ItemRepo
	picks    *repository.PickRepo
	guests   *repository.GuestPickRepo
	claims   *repository.ClaimRepo
	renders  *repository.RenderLogRepo
	settings *repository.SettingsRepo

	state   *state.Coordinator
	gate    *confirm.Gate
	surface platform.Surface
	fetcher platform.Fetcher

	accepted   map[string]struct{}
	labels     map[model.Category]string
	tierPrefix string

	metrics *engineMetrics

	now       func() time.Time
	randIndex func(n int) int
}

// NewEngine wires the engine against an opened database and the
// injected coordinators. The repositories are plain table wrappers, so
// the engine constructs its own set from the shared handle.
func NewEngine(db *sql.DB, coord *state.Coordinator, gate *confirm.Gate, surface platform.Surface, fetcher platform.Fetcher, opts Options) *Engine {
	accepted := make(map[string]struct{}, len(opts.AcceptedSignals))
	for _, s := range opts.AcceptedSignals {
		accepted[s] = struct{}{}
	}
	prefix := opts.TierPrefix
	if prefix == "" {
		prefix = "Winner"
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Engine{
		db:         db,
		items:      repository.NewItemRepo(db),
		picks:      repository.NewPickRepo(db),
		guests:     repository.NewGuestPickRepo(db),
		claims:     repository.NewClaimRepo(db),
		renders:    repository.NewRenderLogRepo(db),
		settings:   repository.NewSettingsRepo(db),
		state:      coord,
		gate:       gate,
		surface:    surface,
		fetcher:    fetcher,
		accepted:   accepted,
		labels:     opts.CategoryLabels,
		tierPrefix: prefix,
		metrics:    newEngineMetrics(reg),
		now:        time.Now,
		randIndex:  rand.IntN,
	}
}

func (e *Engine) categoryLabel(c model.Category) string {
	if l, ok := e.labels[c]; ok && l != "" {
		return l
	}
	return string(c)
}

// HandleSignal runs the claim protocol for one inbound intent. The
// returned error is nil on an accepted claim or one of the rejection
// sentinels; anything else is a processing fault the consumer should
// nack.
func (e *Engine) HandleSignal(ctx context.Context, sig Signal) error {
	err := e.handleSignal(ctx, sig)
	e.metrics.signals.WithLabelValues(outcomeLabel(err)).Inc()
	return err
}

// handleSignal evaluates the rejection ladder in its fixed order:
// session, signal kind, panic, listing, pick balance, already-claimed.
// The first failure is terminal for the event; nothing is queued or
// retried.
func (e *Engine) handleSignal(ctx context.Context, sig Signal) error {
	sess := e.state.Session()
	if !sess.Open() {
		return ErrNoSession
	}
	if _, ok := e.accepted[sig.Kind]; !ok {
		return ErrSignalIgnored
	}
	who := model.RegisteredClaimant(sig.ParticipantID, sig.ClaimantName)
	if e.state.Panic().Enabled {
		e.reverse(ctx, sig.ListingID, who, sig.Kind)
		return ErrPanicEnabled
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	item, err := e.items.GetByListingTx(ctx, tx, sig.ListingID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrListingUnknown
	}
	if err != nil {
		return fmt.Errorf("resolve listing: %w", err)
	}

	entry, err := e.picks.GetTx(ctx, tx, sig.ParticipantID)
	if errors.Is(err, sql.ErrNoRows) {
		e.reverse(ctx, sig.ListingID, who, sig.Kind)
		e.notify(ctx, who, noEntryNotice)
		return ErrNoEntry
	}
	if err != nil {
		return fmt.Errorf("read pick entry: %w", err)
	}
	if entry.Remaining <= 0 {
		e.reverse(ctx, sig.ListingID, who, sig.Kind)
		e.notify(ctx, who, noPicksNotice)
		return ErrNoPicks
	}

	if _, err := e.claims.GetLiveByItemTx(ctx, tx, sess.ID, item.Code); err == nil {
		e.reverse(ctx, sig.ListingID, who, sig.Kind)
		e.notify(ctx, who, claimedNotice(item.Code))
		return ErrItemClaimed
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check live claim: %w", err)
	}

	claim, err := e.insertClaimTx(ctx, tx, sess.ID, who, entry.Reason, item)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	remaining, err := e.decrementTx(ctx, tx, who, entry.Reason, entry.Remaining)
	if err != nil {
		return fmt.Errorf("decrement picks: %w", err)
	}
	if err := e.items.ClearListingTx(ctx, tx, item.Code); err != nil {
		return fmt.Errorf("clear listing: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit claim: %w", err)
	}

	e.settleClaim(ctx, claim, item, remaining, true)
	return nil
}

// insertClaimTx writes the claim row, snapshotting the item metadata
// and the reason as they are at claim time.
func (e *Engine) insertClaimTx(ctx context.Context, tx *sql.Tx, sessionID string, who model.Claimant, reason string, it model.Item) (model.Claim, error) {
	c := model.Claim{
		ClaimedAt:    e.now().UTC(),
		SessionID:    sessionID,
		ClaimantName: who.Name,
		Reason:       reason,
		Category:     it.Category,
		ItemCode:     it.Code,
		ItemNumber:   it.Number,
		WMFilename:   it.WMFilename,
		RawFilename:  it.RawFilename,
	}
	if !who.IsGuest() {
		id := who.ID
		c.ParticipantID = &id
	}
	id, err := e.claims.CreateTx(ctx, tx, c)
	if err != nil {
		return model.Claim{}, err
	}
	c.ID = id
	return c, nil
}

// decrementTx lowers a claimant's balance by one, clamped at zero.
// Registered rows disappear at zero; guest rows persist.
func (e *Engine) decrementTx(ctx context.Context, tx *sql.Tx, who model.Claimant, reason string, current int) (int, error) {
	remaining := current - 1
	if remaining < 0 {
		remaining = 0
	}
	if who.IsGuest() {
		err := e.guests.SetTx(ctx, tx, model.GuestPickEntry{Name: who.Name, Reason: reason, Remaining: remaining})
		return remaining, err
	}
	err := e.picks.SetTx(ctx, tx, model.PickEntry{ParticipantID: who.ID, Name: who.Name, Reason: reason, Remaining: remaining})
	return remaining, err
}

// settleClaim runs the surface side of an accepted claim: tier
// handoff, listing removal, announcement, optional private
// confirmation. The ledger is already committed, so every failure here
// degrades to a log line.
func (e *Engine) settleClaim(ctx context.Context, c model.Claim, it model.Item, remaining int, notify bool) {
	who := c.Claimant()
	e.syncTier(ctx, who, remaining)
	if it.ListingID != "" {
		e.surfaceErr("listing.delete", e.surface.DeleteListing(ctx, it.Category, it.ListingID))
	}
	msgID, err := e.surface.AppendLog(ctx, c.SessionID, platform.Message{Text: e.announcementText(c, it.RawURL)})
	if !e.surfaceErr("log.append", err) {
		if err := e.claims.SetLogMessage(ctx, c.ID, msgID); err != nil {
			log.Printf("claim: record announcement handle for claim %d: %v", c.ID, err)
		}
	}
	if notify {
		e.notify(ctx, who, e.confirmNotice(c, remaining))
	}
}

// syncTier pushes the visible rank derived from a registered
// claimant's balance; a zero balance clears the rank. Guests carry no
// platform identity, so no rank.
func (e *Engine) syncTier(ctx context.Context, who model.Claimant, remaining int) {
	if who.IsGuest() {
		return
	}
	tier := ""
	if remaining > 0 {
		tier = model.TierName(e.tierPrefix, remaining)
	}
	e.surfaceErr("tier.set", e.surface.SetTier(ctx, who.ID, tier))
}

// reverse undoes the visible claim signal of a rejected intent.
func (e *Engine) reverse(ctx context.Context, listingID string, who model.Claimant, signal string) {
	e.surfaceErr("signal.reverse", e.surface.ReverseSignal(ctx, listingID, who, signal))
}

// notify delivers a private notice to a registered claimant; guests
// have no private channel and are skipped.
func (e *Engine) notify(ctx context.Context, who model.Claimant, text string) {
	if who.IsGuest() {
		return
	}
	e.surfaceErr("notice.send", e.surface.Notify(ctx, who.ID, text))
}

// repostListing publishes a fresh public listing for an item and
// stores the new handle. Used after unassign and swap.
func (e *Engine) repostListing(ctx context.Context, it model.Item) {
	listingID, err := e.surface.PostListing(ctx, it.Category, platform.Message{Text: listingText(it)})
	if e.surfaceErr("listing.post", err) {
		return
	}
	if err := e.items.SetListing(ctx, it.Code, listingID); err != nil {
		log.Printf("claim: record listing handle for item %s: %v", it.Code, err)
	}
}

// surfaceErr logs and counts a failed surface command. It reports
// whether err was non-nil so callers can skip dependent steps.
func (e *Engine) surfaceErr(command string, err error) bool {
	if err == nil {
		return false
	}
	e.metrics.surfaceFailures.WithLabelValues(command).Inc()
	log.Printf("surface: %s failed: %v", command, err)
	return true
}
