package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
)

type GuestRepository interface {
	Create(ctx context.Context, invitationID int64, in *domain.GuestInput, token string) (*domain.Guest, error)
	GetByID(ctx context.Context, id int64) (*domain.Guest, error)
	GetByToken(ctx context.Context, token string) (*domain.Guest, error)
	ListByInvitation(ctx context.Context, invitationID int64) ([]domain.Guest, error)
	Update(ctx context.Context, id int64, patch domain.GuestPatch) (*domain.Guest, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Counts(ctx context.Context, invitationID int64) (domain.GuestCounts, error)
}

type guestRepository struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &guestRepository{pool: pool}
}

const guestCols = `id, invitation_id, name, guest_type, expected_count, token,
status, attending_count, message, email, created_at, updated_at`

func scanGuest(row pgx.Row) (*domain.Guest, error) {
	var g domain.Guest
	err := row.Scan(
		&g.ID, &g.InvitationID, &g.Name, &g.Type, &g.ExpectedCount, &g.Token,
		&g.Status, &g.AttendingCount, &g.Message, &g.Email, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *guestRepository) Create(ctx context.Context, invitationID int64, in *domain.GuestInput, token string) (*domain.Guest, error) {
	const q = `INSERT INTO guests (
		invitation_id, name, guest_type, expected_count, token,
		status, attending_count, message, email
	) VALUES ($1, $2, $3, $4, $5, 'PENDING', 0, $6, $7)
	RETURNING ` + guestCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	g, err := scanGuest(r.pool.QueryRow(ctx, q,
		invitationID, in.Name, in.Type, in.Expected(), token, in.Message, in.Email,
	))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return g, nil
}

func (r *guestRepository) GetByID(ctx context.Context, id int64) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	g, err := scanGuest(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *guestRepository) GetByToken(ctx context.Context, token string) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE token=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	g, err := scanGuest(r.pool.QueryRow(ctx, q, token))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *guestRepository) ListByInvitation(ctx context.Context, invitationID int64) ([]domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE invitation_id=$1 ORDER BY created_at, id`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, invitationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []domain.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *g)
	}
	return guests, rows.Err()
}

func (r *guestRepository) Update(ctx context.Context, id int64, patch domain.GuestPatch) (*domain.Guest, error) {
	const q = `
		UPDATE guests
		SET
			name            = COALESCE($2, name),
			guest_type      = COALESCE($3, guest_type),
			expected_count  = COALESCE($4, expected_count),
			attending_count = COALESCE($5, attending_count),
			status          = COALESCE($6, status),
			message         = COALESCE($7, message),
			email           = COALESCE($8, email),
			updated_at      = now()
		WHERE id=$1
		RETURNING ` + guestCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	g, err := scanGuest(r.pool.QueryRow(ctx, q,
		id,
		patch.Name,
		patch.Type,
		patch.ExpectedCount,
		patch.AttendingCount,
		patch.Status,
		patch.Message,
		patch.Email,
	))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *guestRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM guests WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *guestRepository) Counts(ctx context.Context, invitationID int64) (domain.GuestCounts, error) {
	const q = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status='PENDING'),
			COUNT(*) FILTER (WHERE status='CONFIRMED'),
			COUNT(*) FILTER (WHERE status='DECLINED'),
			COALESCE(SUM(expected_count), 0),
			COALESCE(SUM(attending_count), 0)
		FROM guests WHERE invitation_id=$1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c domain.GuestCounts
	err := r.pool.QueryRow(ctx, q, invitationID).Scan(
		&c.Total, &c.Pending, &c.Confirmed, &c.Declined, &c.Expected, &c.Attending,
	)
	return c, err
}
