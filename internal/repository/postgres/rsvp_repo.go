package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"guestlist/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{DB: db}
}

const rsvpColumns = `id, event_id, user_id, token_id, status, companions, guest_name, guest_email, dietary_preference, companion_dietary_preference, created_at, updated_at`

func (r *rsvpRepository) Create(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO rsvps (event_id, user_id, token_id, status, companions, guest_name, guest_email, dietary_preference, companion_dietary_preference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		rsvp.EventID, rsvp.UserID, rsvp.TokenID, rsvp.Status, rsvp.Companions,
		rsvp.GuestName, rsvp.GuestEmail, rsvp.Dietary, rsvp.CompanionDietary,
		rsvp.CreatedAt, rsvp.UpdatedAt).
		Scan(&rsvp.ID)
	if err != nil {
		// The partial unique indexes on (event_id, user_id) and
		// (event_id, token_id) are the uniqueness backstop.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyResponded
		}
		return err
	}
	return nil
}

func (r *rsvpRepository) UpsertByEventAndUser(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO rsvps (event_id, user_id, status, companions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, user_id) WHERE user_id IS NOT NULL
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query,
		rsvp.EventID, rsvp.UserID, rsvp.Status, rsvp.Companions,
		rsvp.CreatedAt, rsvp.UpdatedAt).
		Scan(&rsvp.ID, &rsvp.CreatedAt)
}

func (r *rsvpRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	query := `
		SELECT ` + rsvpColumns + `
		FROM rsvps
		WHERE event_id = $1 AND user_id = $2
	`
	return r.scanRSVP(r.DB.QueryRowContext(ctx, query, eventID, userID))
}

func (r *rsvpRepository) GetByEventAndToken(ctx context.Context, eventID, tokenID string) (*domain.RSVP, error) {
	query := `
		SELECT ` + rsvpColumns + `
		FROM rsvps
		WHERE event_id = $1 AND token_id = $2
	`
	return r.scanRSVP(r.DB.QueryRowContext(ctx, query, eventID, tokenID))
}

func (r *rsvpRepository) scanRSVP(row *sql.Row) (*domain.RSVP, error) {
	rsvp := &domain.RSVP{}
	var userID, tokenID sql.NullString
	err := row.Scan(
		&rsvp.ID, &rsvp.EventID, &userID, &tokenID, &rsvp.Status, &rsvp.Companions,
		&rsvp.GuestName, &rsvp.GuestEmail, &rsvp.Dietary, &rsvp.CompanionDietary,
		&rsvp.CreatedAt, &rsvp.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if userID.Valid {
		rsvp.UserID = &userID.String
	}
	if tokenID.Valid {
		rsvp.TokenID = &tokenID.String
	}
	return rsvp, nil
}

func (r *rsvpRepository) CountGoingAttendees(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(1 + companions), 0)
		FROM rsvps
		WHERE event_id = $1 AND status = 'going'
	`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *rsvpRepository) ListGoingByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	query := `
		SELECT ` + rsvpColumns + `
		FROM rsvps
		WHERE event_id = $1 AND status = 'going'
		ORDER BY created_at ASC
	`
	return r.queryRSVPs(ctx, query, eventID)
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	query := `
		SELECT ` + rsvpColumns + `
		FROM rsvps
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	return r.queryRSVPs(ctx, query, eventID)
}

func (r *rsvpRepository) queryRSVPs(ctx context.Context, query string, args ...any) ([]*domain.RSVP, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rsvps []*domain.RSVP
	for rows.Next() {
		rsvp := &domain.RSVP{}
		var userID, tokenID sql.NullString
		if err := rows.Scan(
			&rsvp.ID, &rsvp.EventID, &userID, &tokenID, &rsvp.Status, &rsvp.Companions,
			&rsvp.GuestName, &rsvp.GuestEmail, &rsvp.Dietary, &rsvp.CompanionDietary,
			&rsvp.CreatedAt, &rsvp.UpdatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			rsvp.UserID = &userID.String
		}
		if tokenID.Valid {
			rsvp.TokenID = &tokenID.String
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if rsvps == nil {
		rsvps = []*domain.RSVP{}
	}
	return rsvps, nil
}
