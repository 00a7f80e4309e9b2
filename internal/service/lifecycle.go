package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/iliyamo/live-claims/internal/confirm"
	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/platform"
)

// StartSession wipes the previous show's ledger, creates a fresh log
// surface and records its handle as the open session. The previous
// session must have been ended first. Gated by the confirmation window
// unless force is set.
func (e *Engine) StartSession(ctx context.Context, actor string, force bool) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Session().Open() {
		return "", ErrSessionOpen
	}
	if !force && e.gate.RequestOrConsume(actor, "session.start") == confirm.NeedsConfirm {
		return "", ErrConfirmRequired
	}
	if err := e.wipeLocked(ctx); err != nil {
		return "", err
	}

	title := e.now().UTC().Format("2006-01-02") + " Claims"
	logID, err := e.surface.CreateLog(ctx, title)
	if err != nil {
		return "", fmt.Errorf("create log surface: %w", err)
	}
	if err := e.state.SetSession(ctx, logID); err != nil {
		return "", fmt.Errorf("record session pointer: %w", err)
	}
	e.surfaceErr("listings.lock", e.surface.SetListingsLocked(ctx, false))
	_, err = e.surface.AppendLog(ctx, logID, platform.Message{Text: openingBanner})
	e.surfaceErr("log.append", err)
	return logID, nil
}

// EndSession rebuilds the projection one last time, locks the listing
// surfaces, announces the close, freezes the log and clears the
// session pointer. The ledger itself stays readable and exportable
// until the next start wipes it.
func (e *Engine) EndSession(ctx context.Context, actor string, force bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.state.Session()
	if !sess.Open() {
		return ErrNoSession
	}
	if !force && e.gate.RequestOrConsume(actor, "session.end") == confirm.NeedsConfirm {
		return ErrConfirmRequired
	}

	// The rendered log is disposable, so a failed final rebuild does
	// not keep the session open.
	if err := e.rebuildLocked(ctx, sess.ID); err != nil {
		log.Printf("session: final rebuild failed: %v", err)
	}
	e.surfaceErr("listings.lock", e.surface.SetListingsLocked(ctx, true))
	_, err := e.surface.AppendLog(ctx, sess.ID, platform.Message{Text: closingNotice})
	e.surfaceErr("log.append", err)
	e.surfaceErr("log.freeze", e.surface.FreezeLog(ctx, sess.ID))
	if err := e.state.SetSession(ctx, ""); err != nil {
		return fmt.Errorf("clear session pointer: %w", err)
	}
	return nil
}

// Wipe deletes every ledger table. Refused while a session is open;
// that refusal is what protects live show data from a stray command.
func (e *Engine) Wipe(ctx context.Context, actor string, force bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Session().Open() {
		return ErrSessionOpen
	}
	if !force && e.gate.RequestOrConsume(actor, "wipe") == confirm.NeedsConfirm {
		return ErrConfirmRequired
	}
	return e.wipeLocked(ctx)
}

// wipeLocked deletes all ledger tables in one transaction and resets
// the cached coordinator state. Callers hold e.mu.
func (e *Engine) wipeLocked(ctx context.Context) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin wipe tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, del := range []func(context.Context, *sql.Tx) error{
		e.items.DeleteAllTx,
		e.picks.DeleteAllTx,
		e.guests.DeleteAllTx,
		e.claims.DeleteAllTx,
		e.renders.DeleteAllTx,
		e.settings.DeleteAllTx,
	} {
		if err := del(ctx, tx); err != nil {
			return fmt.Errorf("wipe: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit wipe: %w", err)
	}
	e.state.Reset()
	return nil
}

// SetPanic toggles the emergency stop. Enabling goes through the
// confirmation gate and locks the public listing surfaces; disabling
// is immediate and unlocks them. Claims and picks are untouched either
// way.
func (e *Engine) SetPanic(ctx context.Context, enabled bool, actor string, force bool) (model.PanicState, error) {
	if enabled && !force && e.gate.RequestOrConsume(actor, "panic.on") == confirm.NeedsConfirm {
		return model.PanicState{}, ErrConfirmRequired
	}
	st, err := e.state.SetPanic(ctx, enabled, actor)
	if err != nil {
		return model.PanicState{}, err
	}
	e.surfaceErr("listings.lock", e.surface.SetListingsLocked(ctx, enabled))
	return st, nil
}

// PanicStatus returns the cached panic flag.
func (e *Engine) PanicStatus() model.PanicState { return e.state.Panic() }

// SessionStatus returns the cached session pointer.
func (e *Engine) SessionStatus() model.Session { return e.state.Session() }

// ConfirmWindow exposes the gate's window so handlers can tell staff
// how long a pending confirmation lasts.
func (e *Engine) ConfirmWindow() int {
	return int(e.gate.Window().Seconds())
}
