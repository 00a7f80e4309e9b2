package state

import (
	"context"
	"testing"

	"github.com/iliyamo/live-claims/internal/database"
	"github.com/iliyamo/live-claims/internal/repository"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *repository.SettingsRepo) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	settings := repository.NewSettingsRepo(db)
	return New(settings), settings
}

func TestCoordinatorLoadEmpty(t *testing.T) {
	c, _ := newTestCoordinator(t)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Session().Open() {
		t.Fatal("fresh store reports an open session")
	}
	if c.Panic().Enabled {
		t.Fatal("fresh store reports panic enabled")
	}
}

func TestCoordinatorSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, settings := newTestCoordinator(t)

	if err := c.SetSession(ctx, "sess-1"); err != nil {
		t.Fatalf("set session: %v", err)
	}
	if got := c.Session(); !got.Open() || got.ID != "sess-1" {
		t.Fatalf("session = %+v", got)
	}

	// A second coordinator over the same store sees the persisted value.
	c2 := New(settings)
	if err := c2.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c2.Session(); got.ID != "sess-1" {
		t.Fatalf("reloaded session = %+v", got)
	}

	if err := c.SetSession(ctx, ""); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	if c.Session().Open() {
		t.Fatal("cleared session still open")
	}
}

func TestCoordinatorPanicRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, settings := newTestCoordinator(t)

	st, err := c.SetPanic(ctx, true, "alice")
	if err != nil {
		t.Fatalf("set panic: %v", err)
	}
	if !st.Enabled || st.Actor != "alice" || st.At.IsZero() {
		t.Fatalf("panic state = %+v", st)
	}

	c2 := New(settings)
	if err := c2.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := c2.Panic()
	if !got.Enabled || got.Actor != "alice" || got.At.IsZero() {
		t.Fatalf("reloaded panic state = %+v", got)
	}

	if _, err := c.SetPanic(ctx, false, "bob"); err != nil {
		t.Fatalf("clear panic: %v", err)
	}
	if c.Panic().Enabled {
		t.Fatal("panic still enabled after clear")
	}
}

func TestCoordinatorReset(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCoordinator(t)

	if err := c.SetSession(ctx, "sess-1"); err != nil {
		t.Fatalf("set session: %v", err)
	}
	if _, err := c.SetPanic(ctx, true, "alice"); err != nil {
		t.Fatalf("set panic: %v", err)
	}
	c.Reset()
	if c.Session().Open() || c.Panic().Enabled {
		t.Fatal("reset did not clear the cache")
	}
}
