package service

import (
	"context"
	"fmt"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/repository"
)

type RSVPService interface {
	List(ctx context.Context, invitationID int64, filter domain.RSVPFilter) ([]domain.RSVP, error)
}

type rsvpService struct {
	invitations repository.InvitationRepository
	rsvps       repository.RSVPRepository
}

func NewRSVPService(invitations repository.InvitationRepository, rsvps repository.RSVPRepository) RSVPService {
	return &rsvpService{invitations: invitations, rsvps: rsvps}
}

func (s *rsvpService) List(ctx context.Context, invitationID int64, filter domain.RSVPFilter) ([]domain.RSVP, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("Invitation")
	}

	list, err := s.rsvps.List(ctx, inv.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	if list == nil {
		list = []domain.RSVP{}
	}
	return list, nil
}
