package model

import "strings"

// ClaimantKind distinguishes the two claimant variants.
type ClaimantKind string

const (
    ClaimantRegistered ClaimantKind = "REGISTERED"
    ClaimantGuest      ClaimantKind = "GUEST"
)

// Claimant identifies who is claiming an item: a registered participant
// with a stable numeric identity, or a guest known only by a display
// name.  Construct values through RegisteredClaimant or GuestClaimant so
// the kind and the identity fields always agree; code that switches on
// Kind never has to guess whether ID is meaningful.
//
// Fields:
//  Kind – REGISTERED or GUEST.
//  ID   – participant identity; zero for guests.
//  Name – display name; for guests this is also the ledger key (case preserved).
type Claimant struct {
    Kind ClaimantKind
    ID   uint64
    Name string
}

// RegisteredClaimant builds the registered variant.
func RegisteredClaimant(id uint64, name string) Claimant {
    return Claimant{Kind: ClaimantRegistered, ID: id, Name: name}
}

// GuestClaimant builds the guest variant.  The name is trimmed but its
// case is preserved, because the guest ledger is keyed by it.
func GuestClaimant(name string) Claimant {
    return Claimant{Kind: ClaimantGuest, Name: strings.TrimSpace(name)}
}

// IsGuest reports whether the claimant is the guest variant.
func (c Claimant) IsGuest() bool { return c.Kind == ClaimantGuest }
