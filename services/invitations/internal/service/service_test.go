package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cris-imc/invitaciones-sub002/pkg/config"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/repository/memory"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/service"
)

// ---------- Mocks ----------

type published struct {
	subject string
	data    any
}

type mockPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, published{subject: subject, data: data})
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.subject)
	}
	return out
}

// ---------- Fixture ----------

type fixture struct {
	store       *memory.Store
	publisher   *mockPublisher
	cfg         *config.Config
	invitations service.InvitationService
	gate        service.AccessGate
	guests      service.GuestService
	rsvps       service.RSVPService
}

func newFixture(t *testing.T, opts ...service.GateOption) *fixture {
	t.Helper()
	store := memory.New()
	pub := &mockPublisher{}
	cfg := &config.Config{Server: config.ServerConfig{PublicBaseURL: "https://inv.example"}}

	return &fixture{
		store:       store,
		publisher:   pub,
		cfg:         cfg,
		invitations: service.NewInvitationService(store.Invitations(), store.Guests(), store.RSVPs(), store.Albums(), pub),
		gate:        service.NewAccessGate(store.Invitations(), store.Guests(), store.RSVPs(), store.Users(), pub, cfg, opts...),
		guests:      service.NewGuestService(store.Invitations(), store.Guests(), cfg),
		rsvps:       service.NewRSVPService(store.Invitations(), store.RSVPs()),
	}
}

func (f *fixture) invitation(t *testing.T, title string) *domain.Invitation {
	t.Helper()
	inv, err := f.invitations.Create(context.Background(), nil, &domain.CreateInvitationInput{
		EventType: domain.EventWedding,
		Details:   domain.EventDetails{Title: title, EventDate: "2026-12-12"},
	})
	require.NoError(t, err)
	return inv
}

func (f *fixture) guest(t *testing.T, invitationID int64, name string) *domain.GuestDTO {
	t.Helper()
	g, err := f.gate.CreateGuest(context.Background(), invitationID, &domain.GuestInput{Name: name})
	require.NoError(t, err)
	return g
}

func intPtr(v int) *int { return &v }
