package model

import "time"

// Claim records one committed claim of an item.  Claims are
// append-mostly: rows are inserted on commit, deleted only by an
// explicit unassign or a full ledger wipe, and never updated except
// for the rendered-announcement handle.  Item metadata is snapshotted
// at commit time so later catalog edits cannot rewrite history.
// Within one session at most one live claim exists per item code.
//
// Fields:
//  ID            – auto-incrementing primary key; orders claims by acceptance.
//  ClaimedAt     – commit timestamp (UTC).
//  SessionID     – handle of the owning session's log surface.
//  ParticipantID – registered claimant identity (nil for guests).
//  ClaimantName  – claimant display name.
//  Reason        – reason copied from the pick ledger entry at claim time.
//  Category      – item category snapshot.
//  ItemCode      – canonical item code.
//  ItemNumber    – item sequence number snapshot.
//  WMFilename    – watermarked asset filename snapshot.
//  RawFilename   – raw asset filename snapshot.
//  LogMessageID  – handle of the rendered announcement, "" until rendered.
type Claim struct {
    ID            uint64    // claims.id
    ClaimedAt     time.Time // claims.claimed_at (stored as RFC 3339 text)
    SessionID     string    // claims.session_id
    ParticipantID *uint64   // claims.participant_id (nullable)
    ClaimantName  string    // claims.claimant_name
    Reason        string    // claims.reason
    Category      Category  // claims.category
    ItemCode      string    // claims.item_code
    ItemNumber    int       // claims.item_number
    WMFilename    string    // claims.wm_filename
    RawFilename   string    // claims.raw_filename
    LogMessageID  string    // claims.log_message_id ("" = not rendered)
}

// Claimant rebuilds the tagged claimant value from the stored columns.
func (c Claim) Claimant() Claimant {
    if c.ParticipantID == nil {
        return GuestClaimant(c.ClaimantName)
    }
    return RegisteredClaimant(*c.ParticipantID, c.ClaimantName)
}
