// Package queue defines the broker payloads and the background
// consumer that feeds inbound claim signals to the engine.
package queue

// ClaimSignalEvent is one claim intent delivered over the claim.signals
// queue: a participant put a claim signal on a public listing. The
// session id is a tracing hint only; the engine resolves the open
// session itself.
type ClaimSignalEvent struct {
    SessionID     string `json:"session_id,omitempty"`
    ListingID     string `json:"listing_id"`
    ParticipantID uint64 `json:"participant_id"`
    ClaimantName  string `json:"claimant_name"`
    Signal        string `json:"signal"`
}
