package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/live-claims/internal/database"
	"github.com/iliyamo/live-claims/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func beginTx(t *testing.T, db *sql.DB) *sql.Tx {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	return tx
}

func TestItemRepoListingRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	items := NewItemRepo(db)

	it := model.Item{Code: "N001", Category: model.CategoryN, Number: 1, WMFilename: "a_wm.png", RawFilename: "a.png", ListingID: "lst-1"}
	if err := items.Upsert(ctx, it); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Upsert again with a new listing; identity stays, listing moves.
	it.ListingID = "lst-2"
	if err := items.Upsert(ctx, it); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	tx := beginTx(t, db)
	got, err := items.GetByListingTx(ctx, tx, "lst-2")
	if err != nil {
		t.Fatalf("get by listing: %v", err)
	}
	if got.Code != "N001" {
		t.Fatalf("resolved %q, want N001", got.Code)
	}
	if _, err := items.GetByListingTx(ctx, tx, "lst-1"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("stale listing resolved, err = %v", err)
	}
	if err := items.ClearListingTx(ctx, tx, "N001"); err != nil {
		t.Fatalf("clear listing: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err = items.GetByCode(ctx, "N001")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got.ListingID != "" {
		t.Fatalf("listing id = %q, want empty", got.ListingID)
	}
}

func TestItemRepoEmptyListingNeverResolves(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	items := NewItemRepo(db)

	if err := items.Upsert(ctx, model.Item{Code: "S001", Category: model.CategoryS, Number: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	tx := beginTx(t, db)
	defer func() { _ = tx.Rollback() }()
	if _, err := items.GetByListingTx(ctx, tx, ""); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("empty listing resolved an item, err = %v", err)
	}
}

func TestPickRepoZeroDeletesRow(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	picks := NewPickRepo(db)

	tx := beginTx(t, db)
	if err := picks.SetTx(ctx, tx, model.PickEntry{ParticipantID: 7, Name: "Ada", Reason: "giveaway", Remaining: 2}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	e, err := picks.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Remaining != 2 || e.Reason != "giveaway" {
		t.Fatalf("entry = %+v", e)
	}

	tx = beginTx(t, db)
	if err := picks.SetTx(ctx, tx, model.PickEntry{ParticipantID: 7, Name: "Ada", Remaining: 0}); err != nil {
		t.Fatalf("set zero: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := picks.Get(ctx, 7); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("zero entry still present, err = %v", err)
	}
}

func TestGuestPickRepoPersistsAtZero(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	guests := NewGuestPickRepo(db)

	tx := beginTx(t, db)
	if err := guests.SetTx(ctx, tx, model.GuestPickEntry{Name: "Grace", Reason: "raffle", Remaining: 0}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	e, err := guests.Get(ctx, "Grace")
	if err != nil {
		t.Fatalf("guest row at zero should persist: %v", err)
	}
	if e.Remaining != 0 || e.Reason != "raffle" {
		t.Fatalf("entry = %+v", e)
	}
	// Exact-match key: different case is a different guest.
	if _, err := guests.Get(ctx, "grace"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("case-insensitive guest lookup, err = %v", err)
	}
}

func TestClaimRepoLiveLookupAndOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	claims := NewClaimRepo(db)
	now := time.Now().UTC()

	pid := uint64(1)
	rows := []model.Claim{
		{ClaimedAt: now, SessionID: "sess", ParticipantID: &pid, ClaimantName: "zed", Category: model.CategoryN, ItemCode: "N002", ItemNumber: 2},
		{ClaimedAt: now, SessionID: "sess", ClaimantName: "Alice", Category: model.CategoryN, ItemCode: "N003", ItemNumber: 3},
		{ClaimedAt: now, SessionID: "sess", ClaimantName: "Alice", Category: model.CategoryN, ItemCode: "N001", ItemNumber: 1},
		{ClaimedAt: now, SessionID: "other", ClaimantName: "bob", Category: model.CategoryS, ItemCode: "S001", ItemNumber: 1},
	}
	tx := beginTx(t, db)
	for _, c := range rows {
		if _, err := claims.CreateTx(ctx, tx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx = beginTx(t, db)
	live, err := claims.GetLiveByItemTx(ctx, tx, "sess", "N002")
	if err != nil {
		t.Fatalf("live lookup: %v", err)
	}
	if live.ClaimantName != "zed" || live.ParticipantID == nil || *live.ParticipantID != 1 {
		t.Fatalf("live = %+v", live)
	}
	if _, err := claims.GetLiveByItemTx(ctx, tx, "sess", "S001"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("cross-session claim resolved, err = %v", err)
	}
	_ = tx.Rollback()

	got, err := claims.ListBySession(ctx, "sess")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("listed %d claims, want 3", len(got))
	}
	order := []string{"N001", "N003", "N002"}
	for i, want := range order {
		if got[i].ItemCode != want {
			t.Fatalf("position %d = %s, want %s", i, got[i].ItemCode, want)
		}
	}
}

func TestClaimRepoLogMessage(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	claims := NewClaimRepo(db)

	tx := beginTx(t, db)
	id, err := claims.CreateTx(ctx, tx, model.Claim{ClaimedAt: time.Now(), SessionID: "sess", ClaimantName: "Ada", Category: model.CategoryN, ItemCode: "N001", ItemNumber: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := claims.SetLogMessage(ctx, id, "msg-7"); err != nil {
		t.Fatalf("set log message: %v", err)
	}
	got, err := claims.ListBySession(ctx, "sess")
	if err != nil || len(got) != 1 {
		t.Fatalf("list: %v (%d rows)", err, len(got))
	}
	if got[0].LogMessageID != "msg-7" {
		t.Fatalf("log message id = %q, want msg-7", got[0].LogMessageID)
	}
}

func TestSettingsRepo(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	settings := NewSettingsRepo(db)

	if _, err := settings.Get(ctx, "active_session"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("unset key, err = %v", err)
	}
	if err := settings.Set(ctx, "active_session", "sess-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := settings.Set(ctx, "active_session", "sess-2"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	v, err := settings.Get(ctx, "active_session")
	if err != nil || v != "sess-2" {
		t.Fatalf("get = %q, %v", v, err)
	}
	if err := settings.Delete(ctx, "active_session"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := settings.Get(ctx, "active_session"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("deleted key still present, err = %v", err)
	}
}

func TestStaffRepoDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	staff := NewStaffRepo(db)

	id, err := staff.Create(ctx, "Ops@Example.com", "secret", model.RoleStaff, 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatal("create returned id 0")
	}
	if _, err := staff.Create(ctx, "ops@example.com", "other", model.RoleStaff, 4); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate create err = %v, want ErrEmailExists", err)
	}
	a, err := staff.GetByEmail(ctx, "OPS@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if a.ID != id || a.Role != model.RoleStaff || !a.IsActive {
		t.Fatalf("account = %+v", a)
	}
}

func TestTokenRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	tokens := NewTokenRepo(db)

	if err := tokens.StoreRefresh(ctx, 3, "hash-live", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := tokens.StoreRefresh(ctx, 3, "hash-old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("store expired: %v", err)
	}

	got, err := tokens.ValidateRefresh(ctx, "hash-live")
	if err != nil || got != 3 {
		t.Fatalf("validate = %d, %v", got, err)
	}
	if _, err := tokens.ValidateRefresh(ctx, "hash-old"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expired token validated, err = %v", err)
	}

	if err := tokens.RevokeByHash(ctx, "hash-live"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := tokens.ValidateRefresh(ctx, "hash-live"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("revoked token validated, err = %v", err)
	}
}
