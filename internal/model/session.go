package model

import "time"

// Session points at the currently open claiming cycle.  The ID doubles
// as the opaque handle of the session's log surface; an empty ID means
// no session is open.  At most one session is open at a time, and every
// claim references the session that was open when it was committed.
//
// Fields:
//  ID – log surface handle; "" when no session is open.
type Session struct {
    ID string // settings key "active_session"
}

// Open reports whether a session is currently open.
func (s Session) Open() bool { return s.ID != "" }

// PanicState is the global emergency stop.  While enabled, inbound
// claim signals are rejected before the ledger is consulted and the
// public listing surfaces are kept locked.  Toggling it is independent
// of the session lifecycle and never mutates claims or picks.
//
// Fields:
//  Enabled – whether the stop is active.
//  Actor   – who toggled it last.
//  At      – when it was last toggled (UTC).
type PanicState struct {
    Enabled bool      // settings key "panic_mode"
    Actor   string    // settings key "panic_actor"
    At      time.Time // settings key "panic_at"
}
