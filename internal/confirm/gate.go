// Package confirm implements the one-shot confirmation gate that guards
// destructive commands (wipe, session start/end, panic on). A command
// invoked once arms a short-lived token and is refused; invoked again
// within the window it consumes the token and proceeds. Tokens live in
// memory only: a restart clears every pending confirmation, so a stale
// token can never authorize a destructive command minutes later.
package confirm

import (
    "sync"
    "time"
)

// Outcome is the result of RequestOrConsume.
type Outcome int

const (
    // NeedsConfirm means no valid token existed; one was armed and the
    // caller must re-invoke the command within the window.
    NeedsConfirm Outcome = iota
    // Proceed means a valid token existed and was consumed.
    Proceed
)

// DefaultWindow is how long an armed token stays valid.
const DefaultWindow = 60 * time.Second

type key struct {
    actor  string
    action string
}

// Gate tracks pending confirmation tokens keyed by (actor, action).
type Gate struct {
    mu      sync.Mutex
    window  time.Duration
    now     func() time.Time
    pending map[key]time.Time
}

// New returns a gate with the given window; zero or negative selects
// DefaultWindow.
func New(window time.Duration) *Gate {
    if window <= 0 {
        window = DefaultWindow
    }
    return &Gate{
        window:  window,
        now:     time.Now,
        pending: make(map[key]time.Time),
    }
}

// Window returns the confirmation window, for user-facing messages.
func (g *Gate) Window() time.Duration { return g.window }

// RequestOrConsume runs the two-step flow for one (actor, action) pair.
// Expired tokens count as absent, so a late retry re-arms instead of
// proceeding.
func (g *Gate) RequestOrConsume(actor, action string) Outcome {
    g.mu.Lock()
    defer g.mu.Unlock()

    now := g.now()
    k := key{actor: actor, action: action}
    if exp, ok := g.pending[k]; ok && now.Before(exp) {
        delete(g.pending, k)
        return Proceed
    }
    g.pending[k] = now.Add(g.window)
    g.prune(now)
    return NeedsConfirm
}

// prune drops expired tokens; called under the lock.
func (g *Gate) prune(now time.Time) {
    for k, exp := range g.pending {
        if !now.Before(exp) {
            delete(g.pending, k)
        }
    }
}
