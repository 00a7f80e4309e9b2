package platform

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/live-claims/internal/model"
)

// commandQueueName is the durable relay queue consumed by the
// chat-platform binding.
const commandQueueName = "surface.commands"

// Command is the JSON envelope relayed to the chat-platform binding.
// Kind selects the operation; the other fields are populated as the
// kind requires. Handles (log, message, listing) are allocated on this
// side so the core can reference surfaces it has not heard back about.
type Command struct {
	Kind           string `json:"kind"`
	LogID          string `json:"log_id,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
	ListingID      string `json:"listing_id,omitempty"`
	Category       string `json:"category,omitempty"`
	Title          string `json:"title,omitempty"`
	Text           string `json:"text,omitempty"`
	AttachmentName string `json:"attachment_name,omitempty"`
	Attachment     []byte `json:"attachment,omitempty"`
	ParticipantID  uint64 `json:"participant_id,omitempty"`
	Tier           string `json:"tier,omitempty"`
	Signal         string `json:"signal,omitempty"`
	ClaimantName   string `json:"claimant_name,omitempty"`
	Locked         bool   `json:"locked,omitempty"`
}

// Command kinds understood by the relay.
const (
	CmdLogCreate     = "log.create"
	CmdLogAppend     = "log.append"
	CmdLogDelete     = "log.delete"
	CmdLogFreeze     = "log.freeze"
	CmdListingPost   = "listing.post"
	CmdListingDelete = "listing.delete"
	CmdListingsLock  = "listings.lock"
	CmdTierSet       = "tier.set"
	CmdNoticeSend    = "notice.send"
	CmdSignalReverse = "signal.reverse"
)

// Bridge implements Surface by publishing commands to the relay queue.
// The connection is dialed lazily and re-dialed after failures, so the
// service boots and keeps running without a broker; commands issued in
// the meantime are logged and dropped, which matches the degrade-only
// contract for external I/O.
type Bridge struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewBridge returns a bridge that will publish to the given AMQP URL.
func NewBridge(url string) *Bridge {
	return &Bridge{url: url}
}

// Close shuts the broker connection down.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

// reset drops the cached connection; called under the lock.
func (b *Bridge) reset() {
	if b.ch != nil {
		_ = b.ch.Close()
		b.ch = nil
	}
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
}

// channel returns a live channel with the relay queue declared,
// dialing if needed; called under the lock.
func (b *Bridge) channel() (*amqp.Channel, error) {
	if b.ch != nil && !b.ch.IsClosed() {
		return b.ch, nil
	}
	b.reset()

	conn, err := amqp.Dial(b.url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Durable so relay commands survive broker restarts.
	if _, err := ch.QueueDeclare(commandQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	b.conn = conn
	b.ch = ch
	return ch, nil
}

// publish sends one command, re-dialing once on a stale channel. Errors
// are logged and returned so callers can choose to ignore them.
func (b *Bridge) publish(ctx context.Context, cmd Command) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		log.Printf("surface-bridge: marshal %s failed: %v", cmd.Kind, err)
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for attempt := 0; attempt < 2; attempt++ {
		ch, err := b.channel()
		if err != nil {
			log.Printf("surface-bridge: broker unavailable for %s: %v", cmd.Kind, err)
			return err
		}
		err = ch.PublishWithContext(ctx, "", commandQueueName, false, false, pub)
		if err == nil {
			return nil
		}
		b.reset()
		if attempt == 1 {
			log.Printf("surface-bridge: publish %s failed: %v", cmd.Kind, err)
			return err
		}
	}
	return nil
}

// newHandle generates an opaque random identifier with a readable
// prefix, e.g. "log-9f2c4a81".
func newHandle(prefix string) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return prefix + "-00000000"
	}
	return prefix + "-" + hex.EncodeToString(b)
}

// CreateLog allocates a log handle and asks the relay to create the
// surface. The handle is valid even when the relay is unreachable; the
// returned error only reports delivery.
func (b *Bridge) CreateLog(ctx context.Context, title string) (string, error) {
	id := newHandle("log")
	err := b.publish(ctx, Command{Kind: CmdLogCreate, LogID: id, Title: title})
	return id, err
}

func (b *Bridge) AppendLog(ctx context.Context, logID string, msg Message) (string, error) {
	id := newHandle("msg")
	err := b.publish(ctx, Command{
		Kind:           CmdLogAppend,
		LogID:          logID,
		MessageID:      id,
		Text:           msg.Text,
		AttachmentName: msg.AttachmentName,
		Attachment:     msg.Attachment,
	})
	return id, err
}

func (b *Bridge) DeleteLogMessage(ctx context.Context, logID, messageID string) error {
	return b.publish(ctx, Command{Kind: CmdLogDelete, LogID: logID, MessageID: messageID})
}

func (b *Bridge) FreezeLog(ctx context.Context, logID string) error {
	return b.publish(ctx, Command{Kind: CmdLogFreeze, LogID: logID})
}

func (b *Bridge) PostListing(ctx context.Context, cat model.Category, msg Message) (string, error) {
	id := newHandle("lst")
	err := b.publish(ctx, Command{
		Kind:           CmdListingPost,
		ListingID:      id,
		Category:       string(cat),
		Text:           msg.Text,
		AttachmentName: msg.AttachmentName,
		Attachment:     msg.Attachment,
	})
	return id, err
}

func (b *Bridge) DeleteListing(ctx context.Context, cat model.Category, listingID string) error {
	return b.publish(ctx, Command{Kind: CmdListingDelete, Category: string(cat), ListingID: listingID})
}

func (b *Bridge) SetListingsLocked(ctx context.Context, locked bool) error {
	return b.publish(ctx, Command{Kind: CmdListingsLock, Locked: locked})
}

func (b *Bridge) SetTier(ctx context.Context, participantID uint64, tier string) error {
	return b.publish(ctx, Command{Kind: CmdTierSet, ParticipantID: participantID, Tier: tier})
}

func (b *Bridge) Notify(ctx context.Context, participantID uint64, text string) error {
	return b.publish(ctx, Command{Kind: CmdNoticeSend, ParticipantID: participantID, Text: text})
}

func (b *Bridge) ReverseSignal(ctx context.Context, listingID string, claimant model.Claimant, signal string) error {
	return b.publish(ctx, Command{
		Kind:          CmdSignalReverse,
		ListingID:     listingID,
		Signal:        signal,
		ParticipantID: claimant.ID,
		ClaimantName:  claimant.Name,
	})
}
