package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/live-claims/internal/model"
)

func TestGrantAccumulatesAndSetReplaces(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	who := model.RegisteredClaimant(42, "Ada")

	total, err := env.engine.Grant(ctx, who, "giveaway", 2)
	if err != nil || total != 2 {
		t.Fatalf("grant = %d (err %v), want 2", total, err)
	}
	total, err = env.engine.Grant(ctx, who, "raffle", 3)
	if err != nil || total != 5 {
		t.Fatalf("second grant = %d (err %v), want 5", total, err)
	}
	reason, remaining, err := env.engine.PickStatus(ctx, who)
	if err != nil || reason != "raffle" || remaining != 5 {
		t.Fatalf("status = %q/%d (err %v), want raffle/5", reason, remaining, err)
	}
	if got := env.surface.TierOf(42); got != "Winner 5" {
		t.Errorf("tier = %q, want %q", got, "Winner 5")
	}

	total, err = env.engine.SetAbsolute(ctx, who, "prize", 1)
	if err != nil || total != 1 {
		t.Fatalf("set = %d (err %v), want 1", total, err)
	}
	if got := env.surface.TierOf(42); got != "Winner 1" {
		t.Errorf("tier after set = %q, want %q", got, "Winner 1")
	}

	if _, err := env.engine.Grant(ctx, who, "x", 0); err == nil {
		t.Error("zero grant accepted")
	}
	if _, err := env.engine.SetAbsolute(ctx, who, "x", -1); err == nil {
		t.Error("negative set accepted")
	}
}

func TestGrantGuestLedgerIsSeparate(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	guest := model.GuestClaimant("Momo")

	if _, err := env.engine.Grant(ctx, guest, "raffle", 1); err != nil {
		t.Fatalf("grant guest: %v", err)
	}
	reason, remaining, err := env.engine.PickStatus(ctx, guest)
	if err != nil || reason != "raffle" || remaining != 1 {
		t.Fatalf("guest status = %q/%d (err %v), want raffle/1", reason, remaining, err)
	}
	// No registered entry appears under any participant id.
	if _, _, err := env.engine.PickStatus(ctx, model.RegisteredClaimant(1, "Momo")); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("registered lookup err = %v, want ErrNoEntry", err)
	}
}

func TestAssignOverridesReasonOnClaimOnly(t *testing.T) {
	env := newTestEngine(t)
	logID := env.startShow()
	env.seedItem("N001")
	ctx := context.Background()
	who := model.RegisteredClaimant(42, "Ada")
	env.grant(who, "giveaway", 2)

	claim, remaining, err := env.engine.Assign(ctx, who, "N001", "prize")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if claim.Reason != "prize" || remaining != 1 {
		t.Fatalf("claim reason %q remaining %d, want prize/1", claim.Reason, remaining)
	}
	reason, _, err := env.engine.PickStatus(ctx, who)
	if err != nil || reason != "giveaway" {
		t.Fatalf("ledger reason = %q (err %v), want giveaway untouched", reason, err)
	}
	// Staff-issued claims send no private confirmation.
	if got := len(env.surface.NoticesTo(42)); got != 0 {
		t.Errorf("notices = %d, want 0", got)
	}
	msgs := env.surface.LogMessages(logID)
	if countClaimMessages(msgs) != 1 {
		t.Fatalf("announcements = %d, want 1", countClaimMessages(msgs))
	}
}

func TestAssignPreconditions(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()
	who := model.RegisteredClaimant(42, "Ada")

	if _, _, err := env.engine.Assign(ctx, who, "N001", ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("closed session err = %v, want ErrNoSession", err)
	}

	env.startShow()
	env.seedItem("N001")
	if _, _, err := env.engine.Assign(ctx, who, "N999", ""); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("unknown item err = %v, want ErrUnknownItem", err)
	}
	if _, _, err := env.engine.Assign(ctx, who, "N001", ""); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("no entry err = %v, want ErrNoEntry", err)
	}

	env.grant(who, "giveaway", 1)
	if _, _, err := env.engine.Assign(ctx, who, "N001", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}
	env.grant(model.RegisteredClaimant(7, "Bob"), "raffle", 1)
	if _, _, err := env.engine.Assign(ctx, model.RegisteredClaimant(7, "Bob"), "N001", ""); !errors.Is(err, ErrItemClaimed) {
		t.Fatalf("claimed item err = %v, want ErrItemClaimed", err)
	}
}

func TestRandomAssignDrawsFromUnclaimedPool(t *testing.T) {
	env := newTestEngine(t)
	env.startShow()
	env.seedItem("N001")
	env.seedItem("N002")
	env.seedItem("N003")
	ctx := context.Background()
	who := model.RegisteredClaimant(42, "Ada")
	env.grant(who, "giveaway", 3)

	if _, _, err := env.engine.Assign(ctx, who, "N002", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Pool is now [N001 N003] in number order; draw the last element.
	env.engine.randIndex = func(n int) int { return n - 1 }
	claim, remaining, err := env.engine.RandomAssign(ctx, who, model.CategoryN)
	if err != nil {
		t.Fatalf("random assign: %v", err)
	}
	if claim.ItemCode != "N003" || remaining != 1 {
		t.Fatalf("drew %s remaining %d, want N003/1", claim.ItemCode, remaining)
	}

	env.engine.randIndex = func(n int) int { return 0 }
	claim, _, err = env.engine.RandomAssign(ctx, who, model.CategoryN)
	if err != nil || claim.ItemCode != "N001" {
		t.Fatalf("drew %s (err %v), want N001", claim.ItemCode, err)
	}

	env.grant(model.RegisteredClaimant(7, "Bob"), "raffle", 1)
	if _, _, err := env.engine.RandomAssign(ctx, model.RegisteredClaimant(7, "Bob"), model.CategoryN); !errors.Is(err, ErrNoUnclaimed) {
		t.Fatalf("empty pool err = %v, want ErrNoUnclaimed", err)
	}
}

func TestSwapKeepsBalanceAndMovesClaim(t *testing.T) {
	env := newTestEngine(t)
	logID := env.startShow()
	env.seedItem("N001")
	env.seedItem("N002")
	ctx := context.Background()
	who := model.RegisteredClaimant(42, "Ada")
	env.grant(who, "giveaway", 2)

	if _, _, err := env.engine.Assign(ctx, who, "N001", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}

	newClaim, err := env.engine.Swap(ctx, who, "N001", "N002")
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if newClaim.ItemCode != "N002" || newClaim.Reason != "giveaway" {
		t.Fatalf("new claim = %+v", newClaim)
	}

	// The balance does not move on a swap.
	_, remaining, err := env.engine.PickStatus(ctx, who)
	if err != nil || remaining != 1 {
		t.Fatalf("balance = %d (err %v), want 1", remaining, err)
	}

	claims, err := env.engine.claims.ListBySession(ctx, logID)
	if err != nil || len(claims) != 1 || claims[0].ItemCode != "N002" {
		t.Fatalf("claims = %+v (err %v), want only N002", claims, err)
	}

	// The released item is listed again, the new one is not.
	oldItem, err := env.engine.items.GetByCode(ctx, "N001")
	if err != nil || oldItem.ListingID == "" {
		t.Fatalf("released item listing = %q (err %v), want relisted", oldItem.ListingID, err)
	}
	if !env.surface.HasListing(oldItem.ListingID) {
		t.Error("released item's listing is not live")
	}
	newItem, err := env.engine.items.GetByCode(ctx, "N002")
	if err != nil || newItem.ListingID != "" {
		t.Errorf("claimed item listing = %q (err %v), want cleared", newItem.ListingID, err)
	}

	msgs := env.surface.LogMessages(logID)
	if countClaimMessages(msgs) != 1 {
		t.Fatalf("announcements = %d, want the old one replaced", countClaimMessages(msgs))
	}
}

func TestSwapRejections(t *testing.T) {
	env := newTestEngine(t)
	env.startShow()
	env.seedItem("N001")
	env.seedItem("N002")
	env.seedItem("N003")
	env.seedItem("S001")
	ctx := context.Background()
	ada := model.RegisteredClaimant(42, "Ada")
	bob := model.RegisteredClaimant(7, "Bob")
	env.grant(ada, "giveaway", 1)
	env.grant(bob, "raffle", 1)

	if _, _, err := env.engine.Assign(ctx, ada, "N001", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, _, err := env.engine.Assign(ctx, bob, "N002", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := env.engine.Swap(ctx, ada, "N001", "S001"); !errors.Is(err, ErrCategoryMismatch) {
		t.Errorf("cross-category err = %v, want ErrCategoryMismatch", err)
	}
	if _, err := env.engine.Swap(ctx, bob, "N001", "N003"); !errors.Is(err, ErrNotClaimOwner) {
		t.Errorf("foreign claim err = %v, want ErrNotClaimOwner", err)
	}
	if _, err := env.engine.Swap(ctx, ada, "N001", "N002"); !errors.Is(err, ErrItemClaimed) {
		t.Errorf("claimed target err = %v, want ErrItemClaimed", err)
	}
	if _, err := env.engine.Swap(ctx, ada, "N003", "N001"); !errors.Is(err, ErrNotClaimed) {
		t.Errorf("unclaimed source err = %v, want ErrNotClaimed", err)
	}
	if _, err := env.engine.Swap(ctx, ada, "N001", "N999"); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("unknown target err = %v, want ErrUnknownItem", err)
	}
}

func TestUnassignRefundsPick(t *testing.T) {
	env := newTestEngine(t)
	logID := env.startShow()
	env.seedItem("N001")
	ctx := context.Background()
	who := model.RegisteredClaimant(42, "Ada")
	env.grant(who, "giveaway", 2)

	if _, _, err := env.engine.Assign(ctx, who, "N001", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}
	remaining, err := env.engine.Unassign(ctx, who, "N001")
	if err != nil || remaining != 2 {
		t.Fatalf("unassign = %d (err %v), want 2", remaining, err)
	}

	claims, err := env.engine.claims.ListBySession(ctx, logID)
	if err != nil || len(claims) != 0 {
		t.Fatalf("claims = %+v (err %v), want none", claims, err)
	}
	if got := env.surface.TierOf(42); got != "Winner 2" {
		t.Errorf("tier = %q, want restored to %q", got, "Winner 2")
	}
	it, err := env.engine.items.GetByCode(ctx, "N001")
	if err != nil || it.ListingID == "" || !env.surface.HasListing(it.ListingID) {
		t.Fatalf("item not relisted: %+v (err %v)", it, err)
	}
	if n := countClaimMessages(env.surface.LogMessages(logID)); n != 0 {
		t.Errorf("announcements = %d, want the claim's removed", n)
	}
}

func TestUnassignRecreatesExhaustedEntry(t *testing.T) {
	env := newTestEngine(t)
	env.startShow()
	env.seedItem("N001")
	ctx := context.Background()
	who := model.RegisteredClaimant(42, "Ada")
	env.grant(who, "giveaway", 1)

	if _, _, err := env.engine.Assign(ctx, who, "N001", ""); err != nil {
		t.Fatalf("assign: %v", err)
	}
	// The last pick deleted the ledger row; the refund brings it back.
	if _, _, err := env.engine.PickStatus(ctx, who); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("entry err = %v, want ErrNoEntry before refund", err)
	}
	remaining, err := env.engine.Unassign(ctx, who, "N001")
	if err != nil || remaining != 1 {
		t.Fatalf("unassign = %d (err %v), want 1", remaining, err)
	}
	reason, remaining, err := env.engine.PickStatus(ctx, who)
	if err != nil || reason != "giveaway" || remaining != 1 {
		t.Fatalf("status = %q/%d (err %v), want giveaway/1", reason, remaining, err)
	}
}

func TestUnassignGuestByExactName(t *testing.T) {
	env := newTestEngine(t)
	env.startShow()
	env.seedItem("S001")
	ctx := context.Background()
	guest := model.GuestClaimant("Momo")
	env.grant(guest, "raffle", 1)

	if _, _, err := env.engine.Assign(ctx, guest, "S001", ""); err != nil {
		t.Fatalf("assign guest: %v", err)
	}
	if _, err := env.engine.Unassign(ctx, model.GuestClaimant("Imposter"), "S001"); !errors.Is(err, ErrNotClaimOwner) {
		t.Fatalf("imposter err = %v, want ErrNotClaimOwner", err)
	}
	remaining, err := env.engine.Unassign(ctx, guest, "S001")
	if err != nil || remaining != 1 {
		t.Fatalf("unassign guest = %d (err %v), want 1", remaining, err)
	}
}

func TestIngestPreservesListingRef(t *testing.T) {
	env := newTestEngine(t)
	env.startShow()
	listing := env.seedItem("N001")
	ctx := context.Background()

	// Re-ingest without a listing reference; the stored one survives.
	updated := model.Item{
		Code: "N001", Category: model.CategoryN, Number: 1,
		WMFilename: "retake_wm.png", RawFilename: "retake_raw.png",
	}
	if _, err := env.engine.IngestItems(ctx, []model.Item{updated}, false); err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	it, err := env.engine.items.GetByCode(ctx, "N001")
	if err != nil || it.ListingID != listing || it.WMFilename != "retake_wm.png" {
		t.Fatalf("item after re-ingest = %+v (err %v)", it, err)
	}

	// A fresh item with posting enabled goes up on the board.
	before := env.surface.ListingCount()
	fresh := model.Item{Code: "N002", Category: model.CategoryN, Number: 2}
	if _, err := env.engine.IngestItems(ctx, []model.Item{fresh}, true); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := env.surface.ListingCount(); got != before+1 {
		t.Errorf("listings = %d, want %d", got, before+1)
	}
	it, err = env.engine.items.GetByCode(ctx, "N002")
	if err != nil || it.ListingID == "" {
		t.Errorf("fresh item listing = %q (err %v), want recorded", it.ListingID, err)
	}
}
