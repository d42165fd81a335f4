// Package notifier turns invitation events into emails.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/cris-imc/invitaciones-sub002/pkg/events"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	"github.com/cris-imc/invitaciones-sub002/pkg/mailer"
	"github.com/cris-imc/invitaciones-sub002/pkg/metrics"
)

const sendTimeout = 15 * time.Second

type Notifier struct {
	mailer mailer.Service
}

func New(m mailer.Service) *Notifier {
	return &Notifier{mailer: m}
}

// Register queue-subscribes to every subject the notifier handles, so that
// several notify instances share the work.
func (n *Notifier) Register(sub events.Subscriber, queue string) error {
	handlers := map[string]func(context.Context, *events.Message) error{
		events.RSVPCreated:  n.HandleRSVPCreated,
		events.GuestCreated: n.HandleGuestCreated,
	}
	for subject, handle := range handlers {
		if err := sub.QueueSubscribe(subject, queue, n.wrap(handle)); err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		logger.Info("Subscribed", "subject", subject, "queue", queue)
	}
	return nil
}

func (n *Notifier) wrap(handle func(context.Context, *events.Message) error) func(*events.Message) {
	return func(msg *events.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := handle(ctx, msg); err != nil {
			logger.Error("Failed to handle event", "error", err, "subject", msg.Subject, "event_id", msg.ID)
		}
	}
}

// HandleRSVPCreated emails the host about a new RSVP. Invitations without an
// owner have no one to notify.
func (n *Notifier) HandleRSVPCreated(ctx context.Context, msg *events.Message) error {
	var ev events.RSVPCreatedEvent
	if err := msg.Decode(&ev); err != nil {
		return err
	}
	if ev.HostEmail == "" {
		logger.Debug("Skipping rsvp notification without host email", "rsvp_id", ev.RSVPID)
		return nil
	}

	err := n.mailer.SendRSVPNotification(ctx, ev.HostEmail, mailer.RSVPNotification{
		InvitationTitle: ev.InvitationTitle,
		GuestName:       ev.Name,
		Attendance:      ev.Attendance,
		Companions:      ev.Companions,
		Message:         ev.Message,
	})
	record("rsvp", err)
	if err != nil {
		return fmt.Errorf("failed to send rsvp notification: %w", err)
	}
	logger.Info("RSVP notification sent", "rsvp_id", ev.RSVPID, "invitation_id", ev.InvitationID)
	return nil
}

// HandleGuestCreated sends the personal link to guests that have an email.
func (n *Notifier) HandleGuestCreated(ctx context.Context, msg *events.Message) error {
	var ev events.GuestCreatedEvent
	if err := msg.Decode(&ev); err != nil {
		return err
	}
	if ev.GuestEmail == "" {
		return nil
	}

	err := n.mailer.SendGuestInvitation(ctx, ev.GuestEmail, mailer.GuestInvitation{
		InvitationTitle: ev.InvitationTitle,
		GuestName:       ev.GuestName,
		Link:            ev.Link,
	})
	record("guest_invitation", err)
	if err != nil {
		return fmt.Errorf("failed to send guest invitation: %w", err)
	}
	logger.Info("Guest invitation sent", "guest_id", ev.GuestID, "invitation_id", ev.InvitationID)
	return nil
}

func record(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	metrics.NotificationsSent.WithLabelValues(kind, result).Inc()
}
