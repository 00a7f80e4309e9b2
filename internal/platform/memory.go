package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/iliyamo/live-claims/internal/model"
)

// MemorySurface implements Surface entirely in memory. Tests use it to
// assert on posted listings, log output, notices, tiers and signal
// reversals; it also serves local development without a relay. Handles
// are sequential ("msg-1", "msg-2", ...) so rendered output is
// reproducible.
type MemorySurface struct {
	mu        sync.Mutex
	seq       int
	logs      map[string]*memLog
	listings  map[string]memListing
	locked    bool
	notices   map[uint64][]string
	tiers     map[uint64]string
	reversals []Reversal
}

type memLog struct {
	title  string
	frozen bool
	order  []string
	msgs   map[string]Message
}

type memListing struct {
	cat model.Category
	msg Message
}

// Reversal records one undone claim signal.
type Reversal struct {
	ListingID string
	Claimant  model.Claimant
	Signal    string
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{
		logs:     make(map[string]*memLog),
		listings: make(map[string]memListing),
		notices:  make(map[uint64][]string),
		tiers:    make(map[uint64]string),
	}
}

func (m *MemorySurface) next(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *MemorySurface) CreateLog(_ context.Context, title string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next("log")
	m.logs[id] = &memLog{title: title, msgs: make(map[string]Message)}
	return id, nil
}

func (m *MemorySurface) AppendLog(_ context.Context, logID string, msg Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[logID]
	if !ok {
		return "", fmt.Errorf("unknown log %q", logID)
	}
	if l.frozen {
		return "", fmt.Errorf("log %q is frozen", logID)
	}
	id := m.next("msg")
	l.order = append(l.order, id)
	l.msgs[id] = msg
	return id, nil
}

func (m *MemorySurface) DeleteLogMessage(_ context.Context, logID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[logID]
	if !ok {
		return fmt.Errorf("unknown log %q", logID)
	}
	if _, ok := l.msgs[messageID]; !ok {
		return fmt.Errorf("unknown message %q", messageID)
	}
	delete(l.msgs, messageID)
	for i, id := range l.order {
		if id == messageID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemorySurface) FreezeLog(_ context.Context, logID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[logID]
	if !ok {
		return fmt.Errorf("unknown log %q", logID)
	}
	l.frozen = true
	return nil
}

func (m *MemorySurface) PostListing(_ context.Context, cat model.Category, msg Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next("lst")
	m.listings[id] = memListing{cat: cat, msg: msg}
	return id, nil
}

func (m *MemorySurface) DeleteListing(_ context.Context, _ model.Category, listingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[listingID]; !ok {
		return fmt.Errorf("unknown listing %q", listingID)
	}
	delete(m.listings, listingID)
	return nil
}

func (m *MemorySurface) SetListingsLocked(_ context.Context, locked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = locked
	return nil
}

func (m *MemorySurface) SetTier(_ context.Context, participantID uint64, tier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tier == "" {
		delete(m.tiers, participantID)
		return nil
	}
	m.tiers[participantID] = tier
	return nil
}

func (m *MemorySurface) Notify(_ context.Context, participantID uint64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices[participantID] = append(m.notices[participantID], text)
	return nil
}

func (m *MemorySurface) ReverseSignal(_ context.Context, listingID string, claimant model.Claimant, signal string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reversals = append(m.reversals, Reversal{ListingID: listingID, Claimant: claimant, Signal: signal})
	return nil
}

// LogMessages returns the texts currently in a log, in order.
func (m *MemorySurface) LogMessages(logID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[logID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.msgs[id].Text)
	}
	return out
}

// LogFrozen reports whether a log has been frozen.
func (m *MemorySurface) LogFrozen(logID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[logID]
	return ok && l.frozen
}

// HasListing reports whether a listing handle is still live.
func (m *MemorySurface) HasListing(listingID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.listings[listingID]
	return ok
}

// ListingCount returns the number of live listings.
func (m *MemorySurface) ListingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listings)
}

// Locked reports the listing-board lock state.
func (m *MemorySurface) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// NoticesTo returns the private notices delivered to a participant.
func (m *MemorySurface) NoticesTo(participantID uint64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.notices[participantID]...)
}

// TierOf returns a participant's current visible tier ("" when none).
func (m *MemorySurface) TierOf(participantID uint64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tiers[participantID]
}

// Reversals returns every signal reversal recorded so far.
func (m *MemorySurface) Reversals() []Reversal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Reversal(nil), m.reversals...)
}

// LogAttachmentNames returns the attachment filename of each message in
// a log, in order; "" marks a message without an attachment.
func (m *MemorySurface) LogAttachmentNames(logID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[logID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.msgs[id].AttachmentName)
	}
	return out
}
