package service

import (
	"context"
	"fmt"

	"github.com/cris-imc/invitaciones-sub002/pkg/config"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/repository"
)

// GuestService is the host side of guest management. Creation goes through
// the AccessGate because it mints the access token.
type GuestService interface {
	List(ctx context.Context, invitationID int64) ([]domain.GuestDTO, error)
	Update(ctx context.Context, guestID int64, patch *domain.GuestPatch) (*domain.GuestDTO, error)
	Delete(ctx context.Context, guestID int64) error
}

type guestService struct {
	invitations repository.InvitationRepository
	guests      repository.GuestRepository
	baseURL     string
}

func NewGuestService(invitations repository.InvitationRepository, guests repository.GuestRepository, cfg *config.Config) GuestService {
	return &guestService{
		invitations: invitations,
		guests:      guests,
		baseURL:     cfg.Server.PublicBaseURL,
	}
}

func (s *guestService) toDTO(g domain.Guest) domain.GuestDTO {
	return domain.GuestDTO{Guest: g, Link: GuestLink(s.baseURL, g.InvitationID, g.Token)}
}

func (s *guestService) List(ctx context.Context, invitationID int64) ([]domain.GuestDTO, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("Invitation")
	}

	guests, err := s.guests.ListByInvitation(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}

	out := make([]domain.GuestDTO, 0, len(guests))
	for _, g := range guests {
		out = append(out, s.toDTO(g))
	}
	return out, nil
}

func (s *guestService) Update(ctx context.Context, guestID int64, patch *domain.GuestPatch) (*domain.GuestDTO, error) {
	patch.Normalize()
	if patch.Empty() {
		return nil, domain.Invalid("", "no fields to update")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	guest, err := s.guests.Update(ctx, guestID, *patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update guest: %w", err)
	}
	if guest == nil {
		return nil, domain.NotFound("Guest")
	}

	dto := s.toDTO(*guest)
	return &dto, nil
}

func (s *guestService) Delete(ctx context.Context, guestID int64) error {
	deleted, err := s.guests.Delete(ctx, guestID)
	if err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
	}
	if !deleted {
		return domain.NotFound("Guest")
	}
	return nil
}
