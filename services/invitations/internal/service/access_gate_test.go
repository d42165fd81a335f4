package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cris-imc/invitaciones-sub002/pkg/events"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/service"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
)

func TestCreateGuestDefaults(t *testing.T) {
	f := newFixture(t)
	inv := f.invitation(t, "Boda Juan & María")
	require.Equal(t, "boda-juan-maria", inv.Slug)

	g := f.guest(t, inv.ID, "  Ana   Pérez ")
	require.Equal(t, "Ana Pérez", g.Name)
	require.Equal(t, domain.GuestPending, g.Status)
	require.Equal(t, domain.GuestIndividual, g.Type)
	require.Equal(t, 0, g.AttendingCount)
	require.Equal(t, 1, g.ExpectedCount)
	require.Len(t, g.Token, domain.TokenLength)
	require.Equal(t, service.GuestLink("https://inv.example", inv.ID, g.Token), g.Link)
	require.Contains(t, f.publisher.subjects(), events.GuestCreated)
}

func TestCreateGuestValidation(t *testing.T) {
	f := newFixture(t)
	inv := f.invitation(t, "Cumple Leo")

	_, err := f.gate.CreateGuest(context.Background(), inv.ID, &domain.GuestInput{Name: "   "})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "name", ve.Field)

	_, err = f.gate.CreateGuest(context.Background(), inv.ID, &domain.GuestInput{Name: "Ana", ExpectedCount: intPtr(51)})
	require.ErrorAs(t, err, &ve)

	_, err = f.gate.CreateGuest(context.Background(), 999, &domain.GuestInput{Name: "Ana"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateGuestRetriesTokenCollision(t *testing.T) {
	tokens := []string{
		strings.Repeat("a", domain.TokenLength),
		strings.Repeat("a", domain.TokenLength),
		strings.Repeat("b", domain.TokenLength),
	}
	next := 0
	f := newFixture(t, service.WithTokenGenerator(func() (string, error) {
		tok := tokens[next]
		next++
		return tok, nil
	}))
	inv := f.invitation(t, "Boda")

	first := f.guest(t, inv.ID, "Ana")
	second := f.guest(t, inv.ID, "Luis")
	require.Equal(t, tokens[0], first.Token)
	require.Equal(t, tokens[2], second.Token)
}

func TestCreateGuestGivesUpAfterRepeatedCollisions(t *testing.T) {
	tok := strings.Repeat("z", domain.TokenLength)
	f := newFixture(t, service.WithTokenGenerator(func() (string, error) { return tok, nil }))
	inv := f.invitation(t, "Boda")
	f.guest(t, inv.ID, "Ana")

	_, err := f.gate.CreateGuest(context.Background(), inv.ID, &domain.GuestInput{Name: "Luis"})
	require.Error(t, err)
	var ve *domain.ValidationError
	require.False(t, errors.As(err, &ve))
}

func TestResolveMatrix(t *testing.T) {
	f := newFixture(t)
	a := f.invitation(t, "Boda Juan & María")
	b := f.invitation(t, "XV Sofía")
	guestA := f.guest(t, a.ID, "Ana Pérez")
	guestB := f.guest(t, b.ID, "Luis")

	view, err := f.gate.Resolve(context.Background(), a.ID, guestA.Token)
	require.NoError(t, err)
	require.Equal(t, guestA.ID, view.Guest.ID)
	require.Equal(t, a.ID, view.Invitation.ID)
	require.NotEmpty(t, view.Theme.PrimaryColor)

	denied := []struct {
		name  string
		token string
	}{
		{"other invitation's guest", guestB.Token},
		{"unknown token", strings.Repeat("x", domain.TokenLength)},
		{"short token", guestA.Token[:10]},
		{"empty token", ""},
	}
	for _, tc := range denied {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.gate.Resolve(context.Background(), a.ID, tc.token)
			require.ErrorIs(t, err, domain.ErrUnauthorizedAccess)
		})
	}

	_, err = f.gate.Resolve(context.Background(), 999, guestA.Token)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitRSVPConfirmedCountIncrementsByOne(t *testing.T) {
	f := newFixture(t)
	inv := f.invitation(t, "Boda")
	ctx := context.Background()

	before, err := f.invitations.Dashboard(ctx, inv.ID)
	require.NoError(t, err)

	rsvp, err := f.gate.SubmitRSVP(ctx, &domain.RSVPInput{
		InvitationID: inv.ID,
		Name:         "Ana",
		Attendance:   "CONFIRMS",
		Companions:   intPtr(2),
	})
	require.NoError(t, err)
	require.Equal(t, domain.AttendanceConfirms, rsvp.Attendance)
	require.Equal(t, 2, rsvp.Companions)
	require.Nil(t, rsvp.GuestID)

	after, err := f.invitations.Dashboard(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, before.RSVPs.Confirmed+1, after.RSVPs.Confirmed)
	require.Equal(t, before.RSVPs.ConfirmedAttendees+3, after.RSVPs.ConfirmedAttendees)
	require.Contains(t, f.publisher.subjects(), events.RSVPCreated)
}

func TestSubmitRSVPValidation(t *testing.T) {
	f := newFixture(t)
	inv := f.invitation(t, "Boda")
	ctx := context.Background()

	cases := []struct {
		name  string
		in    domain.RSVPInput
		field string
	}{
		{"missing name", domain.RSVPInput{InvitationID: inv.ID, Attendance: domain.AttendanceConfirms}, "name"},
		{"bad attendance", domain.RSVPInput{InvitationID: inv.ID, Name: "Ana", Attendance: "maybe"}, "attendance"},
		{"negative companions", domain.RSVPInput{InvitationID: inv.ID, Name: "Ana", Attendance: domain.AttendanceConfirms, Companions: intPtr(-1)}, "companions"},
		{"missing invitation", domain.RSVPInput{Name: "Ana", Attendance: domain.AttendanceDeclines}, "invitationId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			_, err := f.gate.SubmitRSVP(ctx, &in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.field, ve.Field)
		})
	}

	_, err := f.gate.SubmitRSVP(ctx, &domain.RSVPInput{InvitationID: 999, Name: "Ana", Attendance: domain.AttendanceDeclines})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitRSVPPublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	inv := f.invitation(t, "Boda")
	f.publisher.err = errors.New("nats down")

	_, err := f.gate.SubmitRSVP(context.Background(), &domain.RSVPInput{
		InvitationID: inv.ID, Name: "Ana", Attendance: domain.AttendanceDeclines,
	})
	require.NoError(t, err)
}

func TestSubmitGuestRSVPUpdatesGuest(t *testing.T) {
	f := newFixture(t)
	inv := f.invitation(t, "Boda")
	g := f.guest(t, inv.ID, "Familia Ruiz")
	ctx := context.Background()

	view, rsvp, err := f.gate.SubmitGuestRSVP(ctx, inv.ID, g.Token, &domain.RSVPInput{
		Attendance: domain.AttendanceConfirms,
		Companions: intPtr(3),
	})
	require.NoError(t, err)
	require.Equal(t, "Familia Ruiz", rsvp.Name)
	require.NotNil(t, rsvp.GuestID)
	require.Equal(t, g.ID, *rsvp.GuestID)
	require.Equal(t, domain.GuestConfirmed, view.Guest.Status)
	require.Equal(t, 4, view.Guest.AttendingCount)

	view, _, err = f.gate.SubmitGuestRSVP(ctx, inv.ID, g.Token, &domain.RSVPInput{Attendance: domain.AttendanceDeclines})
	require.NoError(t, err)
	require.Equal(t, domain.GuestDeclined, view.Guest.Status)
	require.Equal(t, 0, view.Guest.AttendingCount)

	counts, err := f.store.RSVPs().Counts(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, 2, counts.Total)
}

func TestSubmitRSVPRejectedWhenRSVPDisabled(t *testing.T) {
	f := newFixture(t)
	inv := f.invitation(t, "Boda")
	g := f.guest(t, inv.ID, "Ana")
	ctx := context.Background()

	off := false
	_, err := f.invitations.Update(ctx, inv.ID, &domain.InvitationPatch{
		Theme: &theme.Config{Features: theme.Features{RSVP: &off}},
	})
	require.NoError(t, err)

	var verr *domain.ValidationError
	_, err = f.gate.SubmitRSVP(ctx, &domain.RSVPInput{InvitationID: inv.ID, Name: "Ana", Attendance: domain.AttendanceConfirms})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "rsvp", verr.Field)

	_, _, err = f.gate.SubmitGuestRSVP(ctx, inv.ID, g.Token, &domain.RSVPInput{Attendance: domain.AttendanceConfirms})
	require.ErrorAs(t, err, &verr)

	counts, err := f.store.RSVPs().Counts(ctx, inv.ID)
	require.NoError(t, err)
	require.Zero(t, counts.Total)
	require.NotContains(t, f.publisher.subjects(), events.RSVPCreated)

	stored, err := f.store.Guests().GetByToken(ctx, g.Token)
	require.NoError(t, err)
	require.Equal(t, domain.GuestPending, stored.Status)
}

func TestSubmitGuestRSVPDeniedWithForeignToken(t *testing.T) {
	f := newFixture(t)
	a := f.invitation(t, "Boda A")
	b := f.invitation(t, "Boda B")
	gb := f.guest(t, b.ID, "Luis")

	_, _, err := f.gate.SubmitGuestRSVP(context.Background(), a.ID, gb.Token, &domain.RSVPInput{Attendance: domain.AttendanceConfirms})
	require.ErrorIs(t, err, domain.ErrUnauthorizedAccess)

	counts, err := f.store.RSVPs().Counts(context.Background(), a.ID)
	require.NoError(t, err)
	require.Zero(t, counts.Total)
}

func TestRSVPEventCarriesHostEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, err := f.store.Users().Create(ctx, &domain.RegisterRequest{Email: "host@example.com", Name: "Host"}, "hash")
	require.NoError(t, err)

	inv, err := f.invitations.Create(ctx, &host.ID, &domain.CreateInvitationInput{
		EventType: domain.EventBirthday,
		Details:   domain.EventDetails{Title: "Cumple"},
	})
	require.NoError(t, err)

	_, err = f.gate.SubmitRSVP(ctx, &domain.RSVPInput{InvitationID: inv.ID, Name: "Ana", Attendance: domain.AttendanceConfirms})
	require.NoError(t, err)

	var ev events.RSVPCreatedEvent
	for _, e := range f.publisher.events {
		if e.subject == events.RSVPCreated {
			ev = e.data.(events.RSVPCreatedEvent)
		}
	}
	require.Equal(t, "host@example.com", ev.HostEmail)
	require.Equal(t, "Cumple", ev.InvitationTitle)
}
