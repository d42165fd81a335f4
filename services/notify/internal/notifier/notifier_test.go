package notifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cris-imc/invitaciones-sub002/pkg/events"
	"github.com/cris-imc/invitaciones-sub002/pkg/mailer"
	"github.com/cris-imc/invitaciones-sub002/services/notify/internal/notifier"
)

// ---------- Mocks ----------

type sentMail struct {
	to   string
	rsvp *mailer.RSVPNotification
	inv  *mailer.GuestInvitation
}

type mockMailer struct {
	sent    []sentMail
	sendErr error
}

func (m *mockMailer) SendRSVPNotification(_ context.Context, to string, n mailer.RSVPNotification) error {
	m.sent = append(m.sent, sentMail{to: to, rsvp: &n})
	return m.sendErr
}

func (m *mockMailer) SendGuestInvitation(_ context.Context, to string, inv mailer.GuestInvitation) error {
	m.sent = append(m.sent, sentMail{to: to, inv: &inv})
	return m.sendErr
}

type mockSubscriber struct {
	handlers map[string]func(*events.Message)
	queues   map[string]string
}

func (m *mockSubscriber) Subscribe(subject string, handler func(*events.Message)) error {
	return m.QueueSubscribe(subject, "", handler)
}

func (m *mockSubscriber) QueueSubscribe(subject, queue string, handler func(*events.Message)) error {
	if m.handlers == nil {
		m.handlers = map[string]func(*events.Message){}
		m.queues = map[string]string{}
	}
	m.handlers[subject] = handler
	m.queues[subject] = queue
	return nil
}

func (m *mockSubscriber) Close() error { return nil }

func message(t *testing.T, subject string, v any) *events.Message {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return &events.Message{Subject: subject, Data: data, Timestamp: time.Now(), ID: "evt-1"}
}

// ---------- Tests ----------

func TestRSVPCreatedEmailsHost(t *testing.T) {
	m := &mockMailer{}
	n := notifier.New(m)

	err := n.HandleRSVPCreated(context.Background(), message(t, events.RSVPCreated, events.RSVPCreatedEvent{
		RSVPID:          1,
		InvitationTitle: "Boda Juan & María",
		Name:            "Ana Pérez",
		Attendance:      "confirms",
		Companions:      2,
		HostEmail:       "host@example.com",
	}))
	require.NoError(t, err)
	require.Len(t, m.sent, 1)
	require.Equal(t, "host@example.com", m.sent[0].to)
	require.Equal(t, "Ana Pérez", m.sent[0].rsvp.GuestName)
	require.Equal(t, 2, m.sent[0].rsvp.Companions)
}

func TestRSVPCreatedWithoutHostIsSkipped(t *testing.T) {
	m := &mockMailer{}
	err := notifier.New(m).HandleRSVPCreated(context.Background(), message(t, events.RSVPCreated, events.RSVPCreatedEvent{RSVPID: 1}))
	require.NoError(t, err)
	require.Empty(t, m.sent)
}

func TestGuestCreatedSendsLink(t *testing.T) {
	m := &mockMailer{}
	n := notifier.New(m)
	ctx := context.Background()

	require.NoError(t, n.HandleGuestCreated(ctx, message(t, events.GuestCreated, events.GuestCreatedEvent{GuestName: "Luis"})))
	require.Empty(t, m.sent)

	require.NoError(t, n.HandleGuestCreated(ctx, message(t, events.GuestCreated, events.GuestCreatedEvent{
		GuestName:  "Ana",
		GuestEmail: "ana@example.com",
		Link:       "http://localhost:8080/invite/1/tok",
	})))
	require.Len(t, m.sent, 1)
	require.Equal(t, "http://localhost:8080/invite/1/tok", m.sent[0].inv.Link)
}

func TestHandlerErrors(t *testing.T) {
	m := &mockMailer{sendErr: errors.New("smtp down")}
	n := notifier.New(m)
	ctx := context.Background()

	err := n.HandleGuestCreated(ctx, message(t, events.GuestCreated, events.GuestCreatedEvent{GuestEmail: "ana@example.com"}))
	require.ErrorContains(t, err, "smtp down")

	err = n.HandleRSVPCreated(ctx, &events.Message{Subject: events.RSVPCreated, Data: []byte("{bad")})
	require.Error(t, err)
}

func TestRegisterQueueSubscribes(t *testing.T) {
	m := &mockMailer{}
	sub := &mockSubscriber{}
	require.NoError(t, notifier.New(m).Register(sub, "notify"))

	require.Equal(t, "notify", sub.queues[events.RSVPCreated])
	require.Equal(t, "notify", sub.queues[events.GuestCreated])

	sub.handlers[events.GuestCreated](message(t, events.GuestCreated, events.GuestCreatedEvent{GuestEmail: "ana@example.com"}))
	require.Len(t, m.sent, 1)
}
