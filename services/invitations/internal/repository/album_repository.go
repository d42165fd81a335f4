package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
)

type AlbumRepository interface {
	GetByInvitation(ctx context.Context, invitationID int64) (*domain.Album, error)
	// Ensure returns the invitation's album, creating it on first use.
	Ensure(ctx context.Context, invitationID int64, title string) (*domain.Album, error)
	SetModeration(ctx context.Context, invitationID int64, title string, enabled bool) (*domain.Album, error)

	CreatePhoto(ctx context.Context, albumID int64, url string, in domain.PhotoInput, approved bool) (*domain.Photo, error)
	GetPhoto(ctx context.Context, id int64) (*domain.Photo, error)
	ListPhotos(ctx context.Context, albumID int64, approved bool) ([]domain.Photo, error)
	SetPhotoApproved(ctx context.Context, id int64, approved bool) (*domain.Photo, error)
	DeletePhoto(ctx context.Context, id int64) (bool, error)
	CountPending(ctx context.Context, invitationID int64) (int, error)
}

type albumRepository struct {
	pool *pgxpool.Pool
}

func NewAlbumRepository(pool *pgxpool.Pool) AlbumRepository {
	return &albumRepository{pool: pool}
}

const albumCols = `id, invitation_id, title, moderation_enabled, created_at`

const photoCols = `p.id, p.album_id, a.invitation_id, p.url, p.uploader_name, p.caption, p.approved, p.created_at`

func scanAlbum(row pgx.Row) (*domain.Album, error) {
	var a domain.Album
	if err := row.Scan(&a.ID, &a.InvitationID, &a.Title, &a.ModerationEnabled, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanPhoto(row pgx.Row) (*domain.Photo, error) {
	var p domain.Photo
	if err := row.Scan(
		&p.ID, &p.AlbumID, &p.InvitationID, &p.URL, &p.UploaderName, &p.Caption, &p.Approved, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *albumRepository) GetByInvitation(ctx context.Context, invitationID int64) (*domain.Album, error) {
	const q = `SELECT ` + albumCols + ` FROM albums WHERE invitation_id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	a, err := scanAlbum(r.pool.QueryRow(ctx, q, invitationID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *albumRepository) Ensure(ctx context.Context, invitationID int64, title string) (*domain.Album, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	const q = `INSERT INTO albums (invitation_id, title) VALUES ($1, $2)
	ON CONFLICT (invitation_id) DO UPDATE SET invitation_id = EXCLUDED.invitation_id
	RETURNING ` + albumCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanAlbum(r.pool.QueryRow(ctx, q, invitationID, title))
}

func (r *albumRepository) SetModeration(ctx context.Context, invitationID int64, title string, enabled bool) (*domain.Album, error) {
	const q = `INSERT INTO albums (invitation_id, title, moderation_enabled) VALUES ($1, $2, $3)
	ON CONFLICT (invitation_id) DO UPDATE SET moderation_enabled = EXCLUDED.moderation_enabled
	RETURNING ` + albumCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanAlbum(r.pool.QueryRow(ctx, q, invitationID, title, enabled))
}

func (r *albumRepository) CreatePhoto(ctx context.Context, albumID int64, url string, in domain.PhotoInput, approved bool) (*domain.Photo, error) {
	const q = `WITH p AS (
		INSERT INTO photos (album_id, url, uploader_name, caption, approved)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	)
	SELECT ` + photoCols + ` FROM p JOIN albums a ON a.id = p.album_id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanPhoto(r.pool.QueryRow(ctx, q, albumID, url, in.UploaderName, in.Caption, approved))
}

func (r *albumRepository) GetPhoto(ctx context.Context, id int64) (*domain.Photo, error) {
	const q = `SELECT ` + photoCols + ` FROM photos p JOIN albums a ON a.id = p.album_id WHERE p.id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p, err := scanPhoto(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *albumRepository) ListPhotos(ctx context.Context, albumID int64, approved bool) ([]domain.Photo, error) {
	const q = `SELECT ` + photoCols + ` FROM photos p JOIN albums a ON a.id = p.album_id
	WHERE p.album_id=$1 AND p.approved=$2
	ORDER BY p.created_at DESC, p.id DESC`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, albumID, approved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []domain.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

func (r *albumRepository) SetPhotoApproved(ctx context.Context, id int64, approved bool) (*domain.Photo, error) {
	const q = `WITH p AS (
		UPDATE photos SET approved=$2 WHERE id=$1 RETURNING *
	)
	SELECT ` + photoCols + ` FROM p JOIN albums a ON a.id = p.album_id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p, err := scanPhoto(r.pool.QueryRow(ctx, q, id, approved))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *albumRepository) DeletePhoto(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM photos WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *albumRepository) CountPending(ctx context.Context, invitationID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM photos p JOIN albums a ON a.id = p.album_id
	WHERE a.invitation_id=$1 AND NOT p.approved`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var n int
	err := r.pool.QueryRow(ctx, q, invitationID).Scan(&n)
	return n, err
}
