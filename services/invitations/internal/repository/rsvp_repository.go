package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
)

type RSVPRepository interface {
	Create(ctx context.Context, in *domain.RSVPInput, guestID *int64) (*domain.RSVP, error)
	List(ctx context.Context, invitationID int64, filter domain.RSVPFilter) ([]domain.RSVP, error)
	Counts(ctx context.Context, invitationID int64) (domain.RSVPCounts, error)
}

type rsvpRepository struct {
	pool *pgxpool.Pool
}

func NewRSVPRepository(pool *pgxpool.Pool) RSVPRepository {
	return &rsvpRepository{pool: pool}
}

const rsvpCols = `id, invitation_id, guest_id, name, email, phone, attendance, companions, message, created_at`

func scanRSVP(row pgx.Row) (*domain.RSVP, error) {
	var v domain.RSVP
	err := row.Scan(
		&v.ID, &v.InvitationID, &v.GuestID, &v.Name, &v.Email, &v.Phone,
		&v.Attendance, &v.Companions, &v.Message, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *rsvpRepository) Create(ctx context.Context, in *domain.RSVPInput, guestID *int64) (*domain.RSVP, error) {
	const q = `INSERT INTO rsvps (invitation_id, guest_id, name, email, phone, attendance, companions, message)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + rsvpCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return scanRSVP(r.pool.QueryRow(ctx, q,
		in.InvitationID, guestID, in.Name, in.Email, in.Phone,
		in.Attendance, in.CompanionCount(), in.Message,
	))
}

func (r *rsvpRepository) List(ctx context.Context, invitationID int64, filter domain.RSVPFilter) ([]domain.RSVP, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	q := `SELECT ` + rsvpCols + ` FROM rsvps WHERE invitation_id=$1`
	args := []any{invitationID}
	if filter.Attendance != nil {
		q += ` AND attendance=$2`
		args = append(args, *filter.Attendance)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RSVP
	for rows.Next() {
		v, err := scanRSVP(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Counts aggregates one row per RSVP record; companions only affect
// ConfirmedAttendees.
func (r *rsvpRepository) Counts(ctx context.Context, invitationID int64) (domain.RSVPCounts, error) {
	const q = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE attendance='confirms'),
			COUNT(*) FILTER (WHERE attendance='declines'),
			COALESCE(SUM(1 + companions) FILTER (WHERE attendance='confirms'), 0)
		FROM rsvps WHERE invitation_id=$1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c domain.RSVPCounts
	err := r.pool.QueryRow(ctx, q, invitationID).Scan(&c.Total, &c.Confirmed, &c.Declined, &c.ConfirmedAttendees)
	return c, err
}
