package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
)

func TestGuestServiceListUpdateDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.invitation(t, "Boda")
	g := f.guest(t, inv.ID, "Ana")

	list, err := f.guests.List(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, g.Link, list[0].Link)

	name := "Ana María"
	family := domain.GuestType("family")
	updated, err := f.guests.Update(ctx, g.ID, &domain.GuestPatch{Name: &name, Type: &family, ExpectedCount: intPtr(4)})
	require.NoError(t, err)
	require.Equal(t, "Ana María", updated.Name)
	require.Equal(t, domain.GuestFamily, updated.Type)
	require.Equal(t, 4, updated.ExpectedCount)
	require.Equal(t, g.Token, updated.Token)

	require.NoError(t, f.guests.Delete(ctx, g.ID))
	require.ErrorIs(t, f.guests.Delete(ctx, g.ID), domain.ErrNotFound)

	_, err = f.guests.Update(ctx, g.ID, &domain.GuestPatch{Name: &name})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGuestServiceUpdateRejectsEmptyAndInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.invitation(t, "Boda")
	g := f.guest(t, inv.ID, "Ana")

	var ve *domain.ValidationError
	_, err := f.guests.Update(ctx, g.ID, &domain.GuestPatch{})
	require.ErrorAs(t, err, &ve)

	status := domain.GuestStatus("MAYBE")
	_, err = f.guests.Update(ctx, g.ID, &domain.GuestPatch{Status: &status})
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "status", ve.Field)
}

func TestGuestServiceListUnknownInvitation(t *testing.T) {
	f := newFixture(t)
	_, err := f.guests.List(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRSVPServiceListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.invitation(t, "Boda")
	for _, a := range []domain.Attendance{domain.AttendanceConfirms, domain.AttendanceDeclines, domain.AttendanceConfirms} {
		_, err := f.gate.SubmitRSVP(ctx, &domain.RSVPInput{InvitationID: inv.ID, Name: "X", Attendance: a})
		require.NoError(t, err)
	}

	all, err := f.rsvps.List(ctx, inv.ID, domain.RSVPFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	confirms := domain.AttendanceConfirms
	only, err := f.rsvps.List(ctx, inv.ID, domain.RSVPFilter{Attendance: &confirms})
	require.NoError(t, err)
	require.Len(t, only, 2)

	empty, err := f.rsvps.List(ctx, inv.ID, domain.RSVPFilter{Offset: 10})
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	_, err = f.rsvps.List(ctx, 999, domain.RSVPFilter{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
