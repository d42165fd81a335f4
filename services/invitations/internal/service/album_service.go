package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cris-imc/invitaciones-sub002/pkg/events"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	"github.com/cris-imc/invitaciones-sub002/pkg/metrics"
	"github.com/cris-imc/invitaciones-sub002/pkg/textutil"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/repository"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/storage"
)

// FileStore persists uploaded files and returns their public URL.
type FileStore interface {
	Save(ctx context.Context, f storage.File) (string, error)
}

type AlbumService interface {
	// Photos returns the approved photos of the invitation's album.
	Photos(ctx context.Context, slug string) (*domain.AlbumView, error)
	Upload(ctx context.Context, slug string, in domain.PhotoInput, f storage.File) (*domain.Photo, error)
	// UploadFile stores a file without attaching it to an album.
	UploadFile(ctx context.Context, f storage.File) (string, error)

	PendingPhotos(ctx context.Context, invitationID int64) ([]domain.Photo, error)
	SetModeration(ctx context.Context, invitationID int64, enabled bool) (*domain.Album, error)
	ApprovePhoto(ctx context.Context, photoID int64, approved bool) (*domain.Photo, error)
	DeletePhoto(ctx context.Context, photoID int64) error
}

type albumService struct {
	invitations repository.InvitationRepository
	albums      repository.AlbumRepository
	files       FileStore
	publisher   events.Publisher
}

func NewAlbumService(
	invitations repository.InvitationRepository,
	albums repository.AlbumRepository,
	files FileStore,
	publisher events.Publisher,
) AlbumService {
	return &albumService{
		invitations: invitations,
		albums:      albums,
		files:       files,
		publisher:   publisher,
	}
}

func albumTitle(inv *domain.Invitation) string {
	return "Fotos de " + inv.Details.Title
}

func (s *albumService) invitationBySlug(ctx context.Context, slug string) (*domain.Invitation, error) {
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

func (s *albumService) invitationByID(ctx context.Context, id int64) (*domain.Invitation, error) {
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, domain.NotFound("Invitation")
	}
	return inv, nil
}

func (s *albumService) Photos(ctx context.Context, slug string) (*domain.AlbumView, error) {
	inv, err := s.invitationBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	album, err := s.albums.GetByInvitation(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	view := &domain.AlbumView{Album: album, Photos: []domain.Photo{}}
	if album == nil {
		return view, nil
	}

	photos, err := s.albums.ListPhotos(ctx, album.ID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	if photos != nil {
		view.Photos = photos
	}
	return view, nil
}

func (s *albumService) Upload(ctx context.Context, slug string, in domain.PhotoInput, f storage.File) (*domain.Photo, error) {
	inv, err := s.invitationBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !inv.ResolvedTheme().Features.Gallery {
		return nil, domain.Invalid("gallery", "is disabled for this invitation")
	}

	in.UploaderName = textutil.NormalizeString(in.UploaderName)
	in.Caption = textutil.NormalizeString(in.Caption)
	if len(in.Caption) > 500 {
		return nil, domain.Invalid("caption", "must be at most 500 characters")
	}

	url, err := s.UploadFile(ctx, f)
	if err != nil {
		return nil, err
	}

	album, err := s.albums.Ensure(ctx, inv.ID, albumTitle(inv))
	if err != nil {
		return nil, fmt.Errorf("failed to ensure album: %w", err)
	}

	photo, err := s.albums.CreatePhoto(ctx, album.ID, url, in, !album.ModerationEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	event := events.PhotoUploadedEvent{
		PhotoID:      photo.ID,
		AlbumID:      album.ID,
		InvitationID: inv.ID,
		URL:          photo.URL,
		Approved:     photo.Approved,
		CreatedAt:    photo.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.PhotoUploaded, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish photo uploaded event", "error", err, "photo_id", photo.ID)
	}

	return photo, nil
}

func (s *albumService) UploadFile(ctx context.Context, f storage.File) (string, error) {
	url, err := s.files.Save(ctx, f)
	switch {
	case err == nil:
		metrics.Uploads.WithLabelValues("stored").Inc()
		return url, nil
	case errors.Is(err, storage.ErrTooLarge):
		metrics.Uploads.WithLabelValues("too_large").Inc()
		return "", domain.Invalid("file", "exceeds the upload size limit")
	case errors.Is(err, storage.ErrUnsupported):
		metrics.Uploads.WithLabelValues("bad_type").Inc()
		return "", domain.Invalid("file", "must be an image")
	case errors.Is(err, storage.ErrEmpty):
		metrics.Uploads.WithLabelValues("bad_type").Inc()
		return "", domain.Invalid("file", "is empty")
	default:
		metrics.Uploads.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
}

func (s *albumService) PendingPhotos(ctx context.Context, invitationID int64) ([]domain.Photo, error) {
	inv, err := s.invitationByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	album, err := s.albums.GetByInvitation(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	if album == nil {
		return []domain.Photo{}, nil
	}
	photos, err := s.albums.ListPhotos(ctx, album.ID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	if photos == nil {
		photos = []domain.Photo{}
	}
	return photos, nil
}

func (s *albumService) SetModeration(ctx context.Context, invitationID int64, enabled bool) (*domain.Album, error) {
	inv, err := s.invitationByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	album, err := s.albums.SetModeration(ctx, inv.ID, albumTitle(inv), enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to set moderation: %w", err)
	}
	return album, nil
}

func (s *albumService) ApprovePhoto(ctx context.Context, photoID int64, approved bool) (*domain.Photo, error) {
	photo, err := s.albums.SetPhotoApproved(ctx, photoID, approved)
	if err != nil {
		return nil, fmt.Errorf("failed to update photo: %w", err)
	}
	if photo == nil {
		return nil, domain.NotFound("Photo")
	}
	return photo, nil
}

func (s *albumService) DeletePhoto(ctx context.Context, photoID int64) error {
	deleted, err := s.albums.DeletePhoto(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if !deleted {
		return domain.NotFound("Photo")
	}
	return nil
}
