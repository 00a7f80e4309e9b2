// Package state owns the process-wide claiming state: the session
// pointer and the panic switch. Both are persisted through the settings
// map so they survive restarts, and cached here under a lock so the
// claim path never hits the database just to learn whether a session is
// open. All writers go through the coordinator; nothing else touches
// these settings keys.
package state

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/repository"
)

// Settings keys owned by the coordinator.
const (
	keySession    = "active_session"
	keyPanicMode  = "panic_mode"
	keyPanicActor = "panic_actor"
	keyPanicAt    = "panic_at"
)

// Coordinator is the single owner of session and panic state.
type Coordinator struct {
	settings *repository.SettingsRepo

	mu      sync.Mutex
	session model.Session
	halt    model.PanicState
}

func New(settings *repository.SettingsRepo) *Coordinator {
	return &Coordinator{settings: settings}
}

// Load primes the cache from the settings map. Missing keys mean no
// session and panic off, which is also the state after a wipe.
func (c *Coordinator) Load(ctx context.Context) error {
	sessionID, err := c.getOrEmpty(ctx, keySession)
	if err != nil {
		return err
	}
	mode, err := c.getOrEmpty(ctx, keyPanicMode)
	if err != nil {
		return err
	}
	actor, err := c.getOrEmpty(ctx, keyPanicActor)
	if err != nil {
		return err
	}
	atRaw, err := c.getOrEmpty(ctx, keyPanicAt)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = model.Session{ID: sessionID}
	c.halt = model.PanicState{Enabled: mode == "1", Actor: actor}
	if ts, perr := time.Parse(time.RFC3339, atRaw); perr == nil {
		c.halt.At = ts
	}
	return nil
}

func (c *Coordinator) getOrEmpty(ctx context.Context, name string) (string, error) {
	v, err := c.settings.Get(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// Session returns the cached session pointer.
func (c *Coordinator) Session() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSession persists and caches the session pointer; an empty id marks
// the session closed.
func (c *Coordinator) SetSession(ctx context.Context, id string) error {
	if err := c.settings.Set(ctx, keySession, id); err != nil {
		return err
	}
	c.mu.Lock()
	c.session = model.Session{ID: id}
	c.mu.Unlock()
	return nil
}

// Panic returns the cached panic state.
func (c *Coordinator) Panic() model.PanicState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.halt
}

// SetPanic persists and caches the panic switch with its actor and
// timestamp, and returns the new state.
func (c *Coordinator) SetPanic(ctx context.Context, enabled bool, actor string) (model.PanicState, error) {
	mode := "0"
	if enabled {
		mode = "1"
	}
	at := time.Now().UTC()
	if err := c.settings.Set(ctx, keyPanicMode, mode); err != nil {
		return model.PanicState{}, err
	}
	if err := c.settings.Set(ctx, keyPanicActor, actor); err != nil {
		return model.PanicState{}, err
	}
	if err := c.settings.Set(ctx, keyPanicAt, at.Format(time.RFC3339)); err != nil {
		return model.PanicState{}, err
	}

	st := model.PanicState{Enabled: enabled, Actor: actor, At: at}
	c.mu.Lock()
	c.halt = st
	c.mu.Unlock()
	return st, nil
}

// Reset drops the cache to closed/off. Called after a ledger wipe has
// deleted the settings rows out from under the cache.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.session = model.Session{}
	c.halt = model.PanicState{}
	c.mu.Unlock()
}
