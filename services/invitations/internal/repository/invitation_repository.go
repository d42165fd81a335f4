package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)
	GetByID(ctx context.Context, id int64) (*domain.Invitation, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Invitation, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, ownerID *int64, limit, offset int) ([]domain.Invitation, error)
	Update(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)
}

type invitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &invitationRepository{pool: pool}
}

const invitationCols = `id, slug, event_type, details, theme, content, owner_id, created_at, updated_at`

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var (
		inv                     domain.Invitation
		details, theme, content []byte
	)
	if err := row.Scan(
		&inv.ID, &inv.Slug, &inv.EventType,
		&details, &theme, &content,
		&inv.OwnerID, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(details, &inv.Details); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(theme, &inv.Theme); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(content, &inv.Content); err != nil {
		return nil, err
	}
	return &inv, nil
}

type invitationDocs struct {
	details, theme, content []byte
}

func marshalInvitation(inv *domain.Invitation) (invitationDocs, error) {
	var (
		docs invitationDocs
		err  error
	)
	if docs.details, err = marshalJSON(inv.Details); err != nil {
		return docs, err
	}
	if docs.theme, err = marshalJSON(inv.Theme); err != nil {
		return docs, err
	}
	if docs.content, err = marshalJSON(inv.Content); err != nil {
		return docs, err
	}
	return docs, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	const q = `INSERT INTO invitations (slug, event_type, details, theme, content, owner_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + invitationCols

	docs, err := marshalInvitation(inv)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out, err := scanInvitation(r.pool.QueryRow(ctx, q,
		inv.Slug, inv.EventType, docs.details, docs.theme, docs.content, inv.OwnerID,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return out, nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id int64) (*domain.Invitation, error) {
	const q = `SELECT ` + invitationCols + ` FROM invitations WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	inv, err := scanInvitation(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r *invitationRepository) GetBySlug(ctx context.Context, slug string) (*domain.Invitation, error) {
	const q = `SELECT ` + invitationCols + ` FROM invitations WHERE slug=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	inv, err := scanInvitation(r.pool.QueryRow(ctx, q, slug))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r *invitationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM invitations WHERE slug=$1)`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, slug).Scan(&exists)
	return exists, err
}

func (r *invitationRepository) List(ctx context.Context, ownerID *int64, limit, offset int) ([]domain.Invitation, error) {
	limit, offset = clampPage(limit, offset)

	q := `SELECT ` + invitationCols + ` FROM invitations`
	args := []any{limit, offset}
	if ownerID != nil {
		q += ` WHERE owner_id=$3`
		args = append(args, *ownerID)
	}
	q += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *invitationRepository) Update(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	const q = `
		UPDATE invitations
		SET
			event_type = $2,
			details    = $3,
			theme      = $4,
			content    = $5,
			updated_at = now()
		WHERE id=$1
		RETURNING ` + invitationCols

	docs, err := marshalInvitation(inv)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out, err := scanInvitation(r.pool.QueryRow(ctx, q,
		inv.ID, inv.EventType, docs.details, docs.theme, docs.content,
	))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return out, err
}
