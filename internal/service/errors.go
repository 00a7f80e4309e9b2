package service

import "errors"

// Rejection sentinels for the claim protocol and the staff commands.
// Each precondition failure maps to exactly one of these so callers
// can react per reason: the consumer acks and drops the delivery,
// handlers pick a status code, and the event path decides whether to
// reverse the signal and notify the claimant.
var (
	ErrNoSession        = errors.New("no open session")
	ErrSessionOpen      = errors.New("a session is already open")
	ErrSignalIgnored    = errors.New("signal kind not accepted")
	ErrPanicEnabled     = errors.New("panic mode is enabled")
	ErrListingUnknown   = errors.New("listing not tracked")
	ErrNoEntry          = errors.New("claimant holds no pick entry")
	ErrNoPicks          = errors.New("no picks remaining")
	ErrItemClaimed      = errors.New("item already claimed")
	ErrUnknownItem      = errors.New("unknown item")
	ErrNotClaimed       = errors.New("item is not claimed")
	ErrNotClaimOwner    = errors.New("claim belongs to another claimant")
	ErrCategoryMismatch = errors.New("items are not in the same category")
	ErrNoUnclaimed      = errors.New("no unclaimed items left in category")
	ErrConfirmRequired  = errors.New("confirmation required")
)

var rejections = []error{
	ErrNoSession, ErrSessionOpen, ErrSignalIgnored, ErrPanicEnabled,
	ErrListingUnknown, ErrNoEntry, ErrNoPicks, ErrItemClaimed,
	ErrUnknownItem, ErrNotClaimed, ErrNotClaimOwner, ErrCategoryMismatch,
	ErrNoUnclaimed, ErrConfirmRequired,
}

// IsRejection reports whether err is a precondition rejection, a
// terminal decision about the triggering command, as opposed to a
// processing fault such as a storage error. The consumer acks rejected
// deliveries and nacks only faults.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
