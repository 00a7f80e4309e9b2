package model

import "fmt"

// PickEntry is the pick balance of a registered participant.  One pick
// entitles the holder to claim exactly one item.  The remaining count
// never goes negative; an entry whose count reaches zero is deleted,
// so absence of a row is equivalent to zero.
//
// Fields:
//  ParticipantID – stable external identity of the participant.
//  Name          – display name recorded when picks were granted.
//  Reason        – free-text reason shown in status output and copied onto claims.
//  Remaining     – picks left; never negative.
type PickEntry struct {
    ParticipantID uint64 // picks.participant_id (primary key)
    Name          string // picks.display_name
    Reason        string // picks.reason
    Remaining     int    // picks.remaining
}

// GuestPickEntry is the pick balance of an unregistered guest, keyed by
// display name.  Unlike registered entries, guest entries persist at
// zero so end-of-show reporting can still list who ran out.
//
// Fields:
//  Name      – case-preserving guest display name (primary key).
//  Reason    – free-text reason.
//  Remaining – picks left; never negative.
type GuestPickEntry struct {
    Name      string // guest_picks.guest_name (primary key)
    Reason    string // guest_picks.reason
    Remaining int    // guest_picks.remaining
}

// TierName derives the visible rank for a remaining-pick count.  The
// rank encodes the count itself ("Winner 3"), so every balance change
// maps to exactly one rank and stale ranks are detectable by name.
func TierName(prefix string, remaining int) string {
    return fmt.Sprintf("%s %d", prefix, remaining)
}
