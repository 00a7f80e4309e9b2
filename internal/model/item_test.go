package model

import "testing"

func TestParseItemCode(t *testing.T) {
	cat, n, err := ParseItemCode("N001")
	if err != nil {
		t.Fatalf("ParseItemCode(N001) returned error: %v", err)
	}
	if cat != CategoryN || n != 1 {
		t.Fatalf("ParseItemCode(N001) = %v %d, want N 1", cat, n)
	}

	cat, n, err = ParseItemCode(" s42 ")
	if err != nil {
		t.Fatalf("ParseItemCode(s42) returned error: %v", err)
	}
	if cat != CategoryS || n != 42 {
		t.Fatalf("ParseItemCode(s42) = %v %d, want S 42", cat, n)
	}

	for _, bad := range []string{"", "N", "X001", "N0", "Nabc", "N1000", "S-1"} {
		if _, _, err := ParseItemCode(bad); err == nil {
			t.Errorf("ParseItemCode(%q) accepted, want error", bad)
		}
	}
}

func TestMakeItemCodeRoundTrip(t *testing.T) {
	code := MakeItemCode(CategoryS, 7)
	if code != "S007" {
		t.Fatalf("MakeItemCode = %q, want S007", code)
	}
	cat, n, err := ParseItemCode(code)
	if err != nil || cat != CategoryS || n != 7 {
		t.Fatalf("round trip = %v %d (err %v), want S 7", cat, n, err)
	}
}

func TestClaimantConstructors(t *testing.T) {
	r := RegisteredClaimant(42, "Ada")
	if r.IsGuest() || r.ID != 42 || r.Name != "Ada" {
		t.Fatalf("RegisteredClaimant = %+v", r)
	}
	g := GuestClaimant("  Grace  ")
	if !g.IsGuest() || g.ID != 0 || g.Name != "Grace" {
		t.Fatalf("GuestClaimant = %+v", g)
	}
}

func TestClaimClaimant(t *testing.T) {
	id := uint64(9)
	reg := Claim{ParticipantID: &id, ClaimantName: "Ada"}
	if got := reg.Claimant(); got.Kind != ClaimantRegistered || got.ID != 9 {
		t.Fatalf("registered claim produced %+v", got)
	}
	guest := Claim{ClaimantName: "Grace"}
	if got := guest.Claimant(); !got.IsGuest() || got.Name != "Grace" {
		t.Fatalf("guest claim produced %+v", got)
	}
}

func TestTierName(t *testing.T) {
	if got := TierName("Winner", 3); got != "Winner 3" {
		t.Fatalf("TierName = %q, want %q", got, "Winner 3")
	}
}
