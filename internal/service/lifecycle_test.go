package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/live-claims/internal/model"
)

func TestStartSessionConfirmFlow(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	if _, err := env.engine.StartSession(ctx, "ops", false); !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("first invocation err = %v, want ErrConfirmRequired", err)
	}
	// A different actor cannot consume the pending token.
	if _, err := env.engine.StartSession(ctx, "other", false); !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("other actor err = %v, want ErrConfirmRequired", err)
	}
	logID, err := env.engine.StartSession(ctx, "ops", false)
	if err != nil {
		t.Fatalf("confirmed invocation: %v", err)
	}
	if !env.engine.SessionStatus().Open() {
		t.Fatal("session not open after start")
	}
	msgs := env.surface.LogMessages(logID)
	if len(msgs) != 1 || msgs[0] != openingBanner {
		t.Fatalf("log = %q, want just the opening banner", msgs)
	}
	if env.surface.Locked() {
		t.Error("listing boards locked after start")
	}

	if _, err := env.engine.StartSession(ctx, "ops", true); !errors.Is(err, ErrSessionOpen) {
		t.Fatalf("second start err = %v, want ErrSessionOpen even with force", err)
	}
}

func TestStartSessionWipesPreviousLedger(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	env.startShow()
	env.seedItem("N001")
	who := model.RegisteredClaimant(42, "Ada")
	env.grant(who, "giveaway", 2)
	if _, _, err := env.engine.Assign(ctx, who, "N001", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := env.engine.EndSession(ctx, "ops", true); err != nil {
		t.Fatalf("end: %v", err)
	}

	// The ledger survives the end and dies on the next start.
	if claims, err := env.engine.claims.ListAll(ctx); err != nil || len(claims) != 1 {
		t.Fatalf("claims after end = %d (err %v), want 1", len(claims), err)
	}
	env.startShow()
	if claims, err := env.engine.claims.ListAll(ctx); err != nil || len(claims) != 0 {
		t.Fatalf("claims after restart = %d (err %v), want 0", len(claims), err)
	}
	if items, err := env.engine.items.ListAll(ctx); err != nil || len(items) != 0 {
		t.Fatalf("items after restart = %d (err %v), want 0", len(items), err)
	}
	if _, _, err := env.engine.PickStatus(ctx, who); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("pick entry survived the restart, err = %v", err)
	}
}

func TestEndSessionClosesOut(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	logID := env.startShow()
	env.seedItem("N001")
	who := model.RegisteredClaimant(42, "Ada")
	env.grant(who, "giveaway", 2)
	if _, _, err := env.engine.Assign(ctx, who, "N001", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := env.engine.EndSession(ctx, "ops", false); !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("first end err = %v, want ErrConfirmRequired", err)
	}
	if err := env.engine.EndSession(ctx, "ops", false); err != nil {
		t.Fatalf("confirmed end: %v", err)
	}

	if env.engine.SessionStatus().Open() {
		t.Error("session still open after end")
	}
	if !env.surface.Locked() {
		t.Error("listing boards not locked after end")
	}
	if !env.surface.LogFrozen(logID) {
		t.Error("log not frozen after end")
	}
	msgs := env.surface.LogMessages(logID)
	if len(msgs) == 0 || msgs[len(msgs)-1] != closingNotice {
		t.Fatalf("log tail = %q, want the closing notice", msgs)
	}
	// The final rebuild ran before closing.
	found := false
	for _, m := range msgs {
		if m == rebuildBanner {
			found = true
		}
	}
	if !found {
		t.Error("no rebuild banner in closed log")
	}

	if err := env.engine.EndSession(ctx, "ops", true); !errors.Is(err, ErrNoSession) {
		t.Fatalf("double end err = %v, want ErrNoSession", err)
	}
}

func TestWipeRefusedWhileSessionOpen(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	env.startShow()

	if err := env.engine.Wipe(ctx, "ops", true); !errors.Is(err, ErrSessionOpen) {
		t.Fatalf("wipe err = %v, want ErrSessionOpen even with force", err)
	}

	if err := env.engine.EndSession(ctx, "ops", true); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := env.engine.Wipe(ctx, "ops", false); !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("first wipe err = %v, want ErrConfirmRequired", err)
	}
	if err := env.engine.Wipe(ctx, "ops", false); err != nil {
		t.Fatalf("confirmed wipe: %v", err)
	}
}

func TestPanicToggleConfirmAndLock(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	env.startShow()

	if _, err := env.engine.SetPanic(ctx, true, "ops", false); !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("first enable err = %v, want ErrConfirmRequired", err)
	}
	st, err := env.engine.SetPanic(ctx, true, "ops", false)
	if err != nil {
		t.Fatalf("confirmed enable: %v", err)
	}
	if !st.Enabled || st.Actor != "ops" {
		t.Fatalf("panic state = %+v", st)
	}
	if !env.surface.Locked() {
		t.Error("listing boards not locked under panic")
	}
	if got := env.engine.PanicStatus(); !got.Enabled {
		t.Error("cached panic flag not set")
	}

	// Disabling is deliberately ungated.
	st, err = env.engine.SetPanic(ctx, false, "other", false)
	if err != nil || st.Enabled {
		t.Fatalf("disable = %+v (err %v)", st, err)
	}
	if env.surface.Locked() {
		t.Error("listing boards still locked after panic off")
	}
}

func TestConfirmWindowSeconds(t *testing.T) {
	env := newTestEngine(t)
	if got := env.engine.ConfirmWindow(); got != 60 {
		t.Fatalf("window = %d, want 60", got)
	}
}

// TestShowLifecycleScenario walks one full show: open, grant, claim by
// signal, duplicate claim rejected, unassign, wipe refused while live,
// end, wipe.
func TestShowLifecycleScenario(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	logID := env.startShow()
	listing := env.seedItem("N001")
	ada := model.RegisteredClaimant(42, "Ada")
	bob := model.RegisteredClaimant(7, "Bob")
	env.grant(ada, "giveaway", 3)
	env.grant(bob, "raffle", 1)

	if err := env.signal(listing, 42, "Ada"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, remaining, _ := env.engine.PickStatus(ctx, ada); remaining != 2 {
		t.Fatalf("balance after claim = %d, want 2", remaining)
	}

	it, err := env.engine.items.GetByCode(ctx, "N001")
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	env.engine.repostListing(ctx, it)
	it, _ = env.engine.items.GetByCode(ctx, "N001")
	if err := env.signal(it.ListingID, 7, "Bob"); !errors.Is(err, ErrItemClaimed) {
		t.Fatalf("duplicate claim err = %v, want ErrItemClaimed", err)
	}

	remaining, err := env.engine.Unassign(ctx, ada, "N001")
	if err != nil || remaining != 3 {
		t.Fatalf("unassign = %d (err %v), want 3", remaining, err)
	}

	if err := env.engine.Wipe(ctx, "ops", true); !errors.Is(err, ErrSessionOpen) {
		t.Fatalf("wipe while live err = %v, want ErrSessionOpen", err)
	}
	if err := env.engine.EndSession(ctx, "ops", true); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := env.engine.Wipe(ctx, "ops", true); err != nil {
		t.Fatalf("wipe: %v", err)
	}

	if claims, err := env.engine.claims.ListAll(ctx); err != nil || len(claims) != 0 {
		t.Fatalf("claims after wipe = %d (err %v), want 0", len(claims), err)
	}
	if !env.surface.LogFrozen(logID) {
		t.Error("show log not frozen")
	}
}
