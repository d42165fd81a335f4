package service_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cris-imc/invitaciones-sub002/pkg/events"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
)

func TestCreateInvitationSlugFromTitle(t *testing.T) {
	f := newFixture(t)
	inv := f.invitation(t, "Boda Juan & María")
	require.Equal(t, "boda-juan-maria", inv.Slug)
	require.Equal(t, []string{events.InvitationCreated}, f.publisher.subjects())
}

func TestCreateInvitationSlugCollisionGetsSuffix(t *testing.T) {
	f := newFixture(t)
	first := f.invitation(t, "Boda Juan & María")
	second := f.invitation(t, "Boda Juan & Maria")

	require.Equal(t, "boda-juan-maria", first.Slug)
	require.Regexp(t, regexp.MustCompile(`^boda-juan-maria-[0-9a-f]{4}$`), second.Slug)
}

func TestCreateInvitationExplicitSlug(t *testing.T) {
	f := newFixture(t)
	inv, err := f.invitations.Create(context.Background(), nil, &domain.CreateInvitationInput{
		Slug:      "Mis XV Años",
		EventType: "quince",
		Details:   domain.EventDetails{Title: "XV de Sofía"},
	})
	require.NoError(t, err)
	require.Equal(t, "mis-xv-anos", inv.Slug)
	require.Equal(t, domain.EventQuince, inv.EventType)
}

func TestCreateInvitationValidation(t *testing.T) {
	f := newFixture(t)
	bad := "javascript:alert(1)"
	cases := []struct {
		name  string
		in    domain.CreateInvitationInput
		field string
	}{
		{"event type", domain.CreateInvitationInput{EventType: "PARTY", Details: domain.EventDetails{Title: "x"}}, "eventType"},
		{"title", domain.CreateInvitationInput{EventType: domain.EventWedding}, "title"},
		{"date", domain.CreateInvitationInput{EventType: domain.EventWedding, Details: domain.EventDetails{Title: "x", EventDate: "12/12/2026"}}, "eventDate"},
		{"color", domain.CreateInvitationInput{EventType: domain.EventWedding, Details: domain.EventDetails{Title: "x"}, Theme: theme.Config{PrimaryColor: &bad}}, "primaryColor"},
		{"slug", domain.CreateInvitationInput{EventType: domain.EventWedding, Details: domain.EventDetails{Title: "¡¡!!"}}, "slug"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			_, err := f.invitations.Create(context.Background(), nil, &in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestGetBySlugNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.invitations.GetBySlug(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.invitations.GetBySlug(context.Background(), "../etc")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateMergesTheme(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	primary := "#112233"
	font := "lora"
	inv, err := f.invitations.Create(ctx, nil, &domain.CreateInvitationInput{
		EventType: domain.EventWedding,
		Details:   domain.EventDetails{Title: "Boda"},
		Theme:     theme.Config{PrimaryColor: &primary},
	})
	require.NoError(t, err)

	updated, err := f.invitations.Update(ctx, inv.ID, &domain.InvitationPatch{Theme: &theme.Config{Font: &font}})
	require.NoError(t, err)
	require.Equal(t, "#112233", *updated.Theme.PrimaryColor)
	require.Equal(t, "lora", *updated.Theme.Font)
	require.Equal(t, inv.Slug, updated.Slug)

	resolved, err := f.invitations.Theme(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, "#112233", resolved.PrimaryColor)

	_, err = f.invitations.Update(ctx, 999, &domain.InvitationPatch{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := int64(42)
	_, err := f.invitations.Create(ctx, &owner, &domain.CreateInvitationInput{EventType: domain.EventWedding, Details: domain.EventDetails{Title: "Mine"}})
	require.NoError(t, err)
	f.invitation(t, "Anonymous")

	mine, err := f.invitations.List(ctx, &owner, 20, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "mine", mine[0].Slug)

	all, err := f.invitations.List(ctx, nil, 20, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	other := int64(7)
	none, err := f.invitations.List(ctx, &other, 20, 0)
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestDashboardCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.invitation(t, "Boda")
	g1 := f.guest(t, inv.ID, "Ana")
	f.guest(t, inv.ID, "Luis")

	_, _, err := f.gate.SubmitGuestRSVP(ctx, inv.ID, g1.Token, &domain.RSVPInput{Attendance: domain.AttendanceConfirms, Companions: intPtr(1)})
	require.NoError(t, err)
	_, err = f.gate.SubmitRSVP(ctx, &domain.RSVPInput{InvitationID: inv.ID, Name: "Walk-in", Attendance: domain.AttendanceDeclines})
	require.NoError(t, err)

	d, err := f.invitations.Dashboard(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.GuestCounts{Total: 2, Pending: 1, Confirmed: 1, Expected: 2, Attending: 2}, d.Guests)
	require.Equal(t, domain.RSVPCounts{Total: 2, Confirmed: 1, Declined: 1, ConfirmedAttendees: 2}, d.RSVPs)
	require.Zero(t, d.PendingPhotos)
}
