package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v any) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", m.Subject, err)
	}
	return nil
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url, name string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "bytes", len(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(wrap(msg))
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(wrap(msg))
	})
	return err
}

func (n *NATSEventBus) Close() error {
	return n.conn.Drain()
}

func wrap(msg *nats.Msg) *Message {
	return &Message{
		Subject:   msg.Subject,
		Data:      msg.Data,
		Timestamp: time.Now(),
		ID:        uuid.NewString(),
	}
}

// NopBus drops every event. Used when NATS is not configured.
type NopBus struct{}

func (NopBus) Publish(context.Context, string, any) error          { return nil }
func (NopBus) Subscribe(string, func(*Message)) error              { return nil }
func (NopBus) QueueSubscribe(string, string, func(*Message)) error { return nil }
func (NopBus) Close() error                                        { return nil }

const (
	InvitationCreated = "invitation.created"
	GuestCreated      = "guest.created"
	RSVPCreated       = "rsvp.created"
	PhotoUploaded     = "photo.uploaded"
)

type InvitationCreatedEvent struct {
	InvitationID int64     `json:"invitation_id"`
	Slug         string    `json:"slug"`
	EventType    string    `json:"event_type"`
	OwnerID      *int64    `json:"owner_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// GuestCreatedEvent carries the personal link so the notifier never needs the database.
type GuestCreatedEvent struct {
	GuestID         int64     `json:"guest_id"`
	InvitationID    int64     `json:"invitation_id"`
	InvitationTitle string    `json:"invitation_title"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email,omitempty"`
	Link            string    `json:"link"`
	CreatedAt       time.Time `json:"created_at"`
}

type RSVPCreatedEvent struct {
	RSVPID          int64     `json:"rsvp_id"`
	InvitationID    int64     `json:"invitation_id"`
	InvitationTitle string    `json:"invitation_title"`
	GuestID         *int64    `json:"guest_id,omitempty"`
	Name            string    `json:"name"`
	Attendance      string    `json:"attendance"`
	Companions      int       `json:"companions"`
	Message         string    `json:"message,omitempty"`
	HostEmail       string    `json:"host_email,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type PhotoUploadedEvent struct {
	PhotoID      int64     `json:"photo_id"`
	AlbumID      int64     `json:"album_id"`
	InvitationID int64     `json:"invitation_id"`
	URL          string    `json:"url"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"created_at"`
}
