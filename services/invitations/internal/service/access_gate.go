package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cris-imc/invitaciones-sub002/pkg/config"
	"github.com/cris-imc/invitaciones-sub002/pkg/events"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	"github.com/cris-imc/invitaciones-sub002/pkg/metrics"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/repository"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
)

// GuestView is everything a personalized invitation page needs.
type GuestView struct {
	Invitation *domain.Invitation
	Guest      *domain.Guest
	Theme      theme.Theme
}

// AccessGate authorizes personal guest links and records RSVPs.
type AccessGate interface {
	Resolve(ctx context.Context, invitationID int64, token string) (*GuestView, error)
	SubmitRSVP(ctx context.Context, in *domain.RSVPInput) (*domain.RSVP, error)
	SubmitGuestRSVP(ctx context.Context, invitationID int64, token string, in *domain.RSVPInput) (*GuestView, *domain.RSVP, error)
	CreateGuest(ctx context.Context, invitationID int64, in *domain.GuestInput) (*domain.GuestDTO, error)
}

type accessGate struct {
	invitations repository.InvitationRepository
	guests      repository.GuestRepository
	rsvps       repository.RSVPRepository
	users       repository.UserRepository
	publisher   events.Publisher
	baseURL     string
	newToken    func() (string, error)
}

type GateOption func(*accessGate)

// WithTokenGenerator replaces GenerateToken.
func WithTokenGenerator(fn func() (string, error)) GateOption {
	return func(g *accessGate) {
		if fn != nil {
			g.newToken = fn
		}
	}
}

func NewAccessGate(
	invitations repository.InvitationRepository,
	guests repository.GuestRepository,
	rsvps repository.RSVPRepository,
	users repository.UserRepository,
	publisher events.Publisher,
	cfg *config.Config,
	opts ...GateOption,
) AccessGate {
	g := &accessGate{
		invitations: invitations,
		guests:      guests,
		rsvps:       rsvps,
		users:       users,
		publisher:   publisher,
		baseURL:     cfg.Server.PublicBaseURL,
		newToken:    GenerateToken,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

const tokenAttempts = 3

func (g *accessGate) Resolve(ctx context.Context, invitationID int64, token string) (*GuestView, error) {
	inv, err := g.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("Invitation")
	}

	if len(token) != domain.TokenLength {
		return nil, domain.ErrUnauthorizedAccess
	}
	guest, err := g.guests.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	// Unknown and foreign tokens yield the same error.
	if guest == nil || guest.InvitationID != inv.ID {
		return nil, domain.ErrUnauthorizedAccess
	}

	return &GuestView{Invitation: inv, Guest: guest, Theme: inv.ResolvedTheme()}, nil
}

func (g *accessGate) SubmitRSVP(ctx context.Context, in *domain.RSVPInput) (*domain.RSVP, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	inv, err := g.invitations.GetByID(ctx, in.InvitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("Invitation")
	}

	return g.recordRSVP(ctx, inv, in, nil)
}

func (g *accessGate) SubmitGuestRSVP(ctx context.Context, invitationID int64, token string, in *domain.RSVPInput) (*GuestView, *domain.RSVP, error) {
	view, err := g.Resolve(ctx, invitationID, token)
	if err != nil {
		return nil, nil, err
	}

	in.InvitationID = view.Invitation.ID
	if in.Name == "" {
		in.Name = view.Guest.Name
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	rsvp, err := g.recordRSVP(ctx, view.Invitation, in, &view.Guest.ID)
	if err != nil {
		return nil, nil, err
	}

	// Not transactional with the insert above; the RSVP record stands even if this fails.
	guest, err := g.guests.Update(ctx, view.Guest.ID, domain.PatchFromRSVP(rsvp.Attendance, rsvp.Companions))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update guest after rsvp: %w", err)
	}
	if guest == nil {
		return nil, nil, domain.NotFound("Guest")
	}
	view.Guest = guest

	return view, rsvp, nil
}

func (g *accessGate) recordRSVP(ctx context.Context, inv *domain.Invitation, in *domain.RSVPInput, guestID *int64) (*domain.RSVP, error) {
	if !inv.ResolvedTheme().Features.RSVP {
		return nil, domain.Invalid("rsvp", "is disabled for this invitation")
	}

	rsvp, err := g.rsvps.Create(ctx, in, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to create rsvp: %w", err)
	}
	metrics.RSVPsSubmitted.WithLabelValues(string(rsvp.Attendance)).Inc()

	event := events.RSVPCreatedEvent{
		RSVPID:          rsvp.ID,
		InvitationID:    inv.ID,
		InvitationTitle: inv.Details.Title,
		GuestID:         rsvp.GuestID,
		Name:            rsvp.Name,
		Attendance:      string(rsvp.Attendance),
		Companions:      rsvp.Companions,
		Message:         rsvp.Message,
		HostEmail:       g.hostEmail(ctx, inv),
		CreatedAt:       rsvp.CreatedAt,
	}
	if err := g.publisher.Publish(ctx, events.RSVPCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish rsvp created event", "error", err, "rsvp_id", rsvp.ID)
	}

	return rsvp, nil
}

func (g *accessGate) hostEmail(ctx context.Context, inv *domain.Invitation) string {
	if inv.OwnerID == nil || g.users == nil {
		return ""
	}
	user, err := g.users.FindByID(ctx, *inv.OwnerID)
	if err != nil {
		logger.WarnContext(ctx, "Failed to look up invitation owner", "error", err, "invitation_id", inv.ID)
		return ""
	}
	if user == nil {
		return ""
	}
	return user.Email
}

func (g *accessGate) CreateGuest(ctx context.Context, invitationID int64, in *domain.GuestInput) (*domain.GuestDTO, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	inv, err := g.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("Invitation")
	}

	var guest *domain.Guest
	for attempt := 1; ; attempt++ {
		token, err := g.newToken()
		if err != nil {
			return nil, err
		}
		guest, err = g.guests.Create(ctx, inv.ID, in, token)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) || attempt == tokenAttempts {
			return nil, fmt.Errorf("failed to create guest: %w", err)
		}
		logger.WarnContext(ctx, "Guest token collision, retrying", "attempt", attempt)
	}

	dto := &domain.GuestDTO{Guest: *guest, Link: GuestLink(g.baseURL, inv.ID, guest.Token)}

	event := events.GuestCreatedEvent{
		GuestID:         guest.ID,
		InvitationID:    inv.ID,
		InvitationTitle: inv.Details.Title,
		GuestName:       guest.Name,
		GuestEmail:      guest.Email,
		Link:            dto.Link,
		CreatedAt:       guest.CreatedAt,
	}
	if err := g.publisher.Publish(ctx, events.GuestCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish guest created event", "error", err, "guest_id", guest.ID)
	}

	return dto, nil
}
