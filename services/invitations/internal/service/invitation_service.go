package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cris-imc/invitaciones-sub002/pkg/events"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	"github.com/cris-imc/invitaciones-sub002/pkg/textutil"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/repository"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
)

type InvitationService interface {
	Create(ctx context.Context, ownerID *int64, in *domain.CreateInvitationInput) (*domain.Invitation, error)
	Get(ctx context.Context, id int64) (*domain.Invitation, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Invitation, error)
	List(ctx context.Context, ownerID *int64, limit, offset int) ([]domain.Invitation, error)
	Update(ctx context.Context, id int64, patch *domain.InvitationPatch) (*domain.Invitation, error)
	Theme(ctx context.Context, id int64) (theme.Theme, error)
	Dashboard(ctx context.Context, id int64) (*domain.Dashboard, error)
}

type invitationService struct {
	invitations repository.InvitationRepository
	guests      repository.GuestRepository
	rsvps       repository.RSVPRepository
	albums      repository.AlbumRepository
	publisher   events.Publisher
}

func NewInvitationService(
	invitations repository.InvitationRepository,
	guests repository.GuestRepository,
	rsvps repository.RSVPRepository,
	albums repository.AlbumRepository,
	publisher events.Publisher,
) InvitationService {
	return &invitationService{
		invitations: invitations,
		guests:      guests,
		rsvps:       rsvps,
		albums:      albums,
		publisher:   publisher,
	}
}

const (
	maxSlugLength = 60
	slugAttempts  = 5
	slugSuffixLen = 4
)

func (s *invitationService) Create(ctx context.Context, ownerID *int64, in *domain.CreateInvitationInput) (*domain.Invitation, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	base := baseSlug(in)
	if base == "" {
		return nil, domain.Invalid("slug", "must contain at least one letter or digit")
	}

	inv := &domain.Invitation{
		EventType: in.EventType,
		Details:   in.Details,
		Theme:     in.Theme,
		Content:   in.Content,
		OwnerID:   ownerID,
	}

	var created *domain.Invitation
	for attempt := 1; ; attempt++ {
		slug, err := s.availableSlug(ctx, base, attempt)
		if err != nil {
			return nil, err
		}
		inv.Slug = slug

		created, err = s.invitations.Create(ctx, inv)
		if err == nil {
			break
		}
		// Lost a race for the slug between the existence check and the insert.
		if !errors.Is(err, repository.ErrDuplicate) || attempt == slugAttempts {
			return nil, fmt.Errorf("failed to create invitation: %w", err)
		}
	}

	event := events.InvitationCreatedEvent{
		InvitationID: created.ID,
		Slug:         created.Slug,
		EventType:    string(created.EventType),
		OwnerID:      created.OwnerID,
		CreatedAt:    created.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.InvitationCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish invitation created event", "error", err, "invitation_id", created.ID)
	}

	return created, nil
}

func baseSlug(in *domain.CreateInvitationInput) string {
	src := in.Slug
	if src == "" {
		src = in.Details.Title
	}
	slug := textutil.Slugify(src)
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// availableSlug returns base when free, otherwise base with a random suffix.
// The first attempt always tries the bare base.
func (s *invitationService) availableSlug(ctx context.Context, base string, attempt int) (string, error) {
	candidate := base
	for ; attempt <= slugAttempts; attempt++ {
		if attempt > 1 {
			suffix, err := randomSuffix(slugSuffixLen)
			if err != nil {
				return "", fmt.Errorf("failed to generate slug suffix: %w", err)
			}
			candidate = base + "-" + suffix
		}
		taken, err := s.invitations.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("failed to find a free slug for %q", base)
}

func (s *invitationService) Get(ctx context.Context, id int64) (*domain.Invitation, error) {
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("Invitation")
	}
	return inv, nil
}

func (s *invitationService) GetBySlug(ctx context.Context, slug string) (*domain.Invitation, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !textutil.IsSlug(slug) {
		return nil, domain.NotFound("Invitation")
	}
	inv, err := s.invitations.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("Invitation")
	}
	return inv, nil
}

func (s *invitationService) List(ctx context.Context, ownerID *int64, limit, offset int) ([]domain.Invitation, error) {
	list, err := s.invitations.List(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	if list == nil {
		list = []domain.Invitation{}
	}
	return list, nil
}

func (s *invitationService) Update(ctx context.Context, id int64, patch *domain.InvitationPatch) (*domain.Invitation, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(inv)

	updated, err := s.invitations.Update(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	if updated == nil {
		return nil, domain.NotFound("Invitation")
	}
	return updated, nil
}

func (s *invitationService) Theme(ctx context.Context, id int64) (theme.Theme, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return theme.Theme{}, err
	}
	return inv.ResolvedTheme(), nil
}

func (s *invitationService) Dashboard(ctx context.Context, id int64) (*domain.Dashboard, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	guests, err := s.guests.Counts(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count guests: %w", err)
	}
	rsvps, err := s.rsvps.Counts(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count rsvps: %w", err)
	}
	pending, err := s.albums.CountPending(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending photos: %w", err)
	}

	return &domain.Dashboard{
		InvitationID:  inv.ID,
		Slug:          inv.Slug,
		Guests:        guests,
		RSVPs:         rsvps,
		PendingPhotos: pending,
	}, nil
}
