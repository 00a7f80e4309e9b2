// Package platform defines the narrow boundary to the external chat
// platform: posting and deleting listings, appending to a session's
// claim log, locking surfaces, setting visible tiers, delivering
// private notices and reversing claim signals. The core never talks to
// the platform directly; it goes through these interfaces, implemented
// by the AMQP relay bridge in production and by MemorySurface in tests.
package platform

import (
	"context"

	"github.com/iliyamo/live-claims/internal/model"
)

// Message is one unit of text posted to a surface, optionally carrying
// a re-attached asset.
type Message struct {
	Text           string
	AttachmentName string
	Attachment     []byte
}

// ClaimLog is a session's append-only log surface. Handles returned
// from CreateLog and AppendLog are opaque; the core only stores and
// replays them.
type ClaimLog interface {
	CreateLog(ctx context.Context, title string) (string, error)
	AppendLog(ctx context.Context, logID string, msg Message) (string, error)
	DeleteLogMessage(ctx context.Context, logID, messageID string) error
	FreezeLog(ctx context.Context, logID string) error
}

// ListingBoard is the public listing surface for claimable items.
type ListingBoard interface {
	PostListing(ctx context.Context, cat model.Category, msg Message) (string, error)
	DeleteListing(ctx context.Context, cat model.Category, listingID string) error
	SetListingsLocked(ctx context.Context, locked bool) error
	// ReverseSignal undoes a claimant's visible claim signal on a
	// listing so a rejected intent does not linger as if accepted.
	ReverseSignal(ctx context.Context, listingID string, claimant model.Claimant, signal string) error
}

// Notifier delivers private notices to registered participants. Guests
// have no private channel; their rejections stay visible only through
// the reversed signal.
type Notifier interface {
	Notify(ctx context.Context, participantID uint64, text string) error
}

// TierBoard maintains the visible rank derived from remaining picks.
// Setting a tier replaces any previous rank in one handoff; an empty
// tier name clears the rank.
type TierBoard interface {
	SetTier(ctx context.Context, participantID uint64, tier string) error
}

// Surface bundles the four boundary roles. Both implementations in
// this package satisfy it.
type Surface interface {
	ClaimLog
	ListingBoard
	Notifier
	TierBoard
}
