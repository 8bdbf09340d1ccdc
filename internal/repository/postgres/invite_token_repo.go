package postgres

import (
	"context"
	"database/sql"
	"errors"

	"guestlist/internal/domain"
)

type inviteTokenRepository struct {
	DB *sql.DB
}

func NewInviteTokenRepository(db *sql.DB) domain.InviteTokenRepository {
	return &inviteTokenRepository{DB: db}
}

func (r *inviteTokenRepository) Create(ctx context.Context, token *domain.InviteToken) error {
	query := `
		INSERT INTO invite_tokens (event_id, email, name, secret, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		token.EventID, token.Email, token.Name, token.Secret, token.UserID,
		token.CreatedAt, token.UpdatedAt).
		Scan(&token.ID)
}

func (r *inviteTokenRepository) GetBySecret(ctx context.Context, secret string) (*domain.InviteToken, error) {
	query := `
		SELECT id, event_id, email, name, secret, user_id, created_at, updated_at
		FROM invite_tokens
		WHERE secret = $1
	`
	token := &domain.InviteToken{}
	var userID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, secret).Scan(
		&token.ID, &token.EventID, &token.Email, &token.Name, &token.Secret,
		&userID, &token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if userID.Valid {
		token.UserID = &userID.String
	}
	return token, nil
}

func (r *inviteTokenRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.InviteToken, error) {
	query := `
		SELECT id, event_id, email, name, secret, user_id, created_at, updated_at
		FROM invite_tokens
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*domain.InviteToken
	for rows.Next() {
		token := &domain.InviteToken{}
		var userID sql.NullString
		if err := rows.Scan(
			&token.ID, &token.EventID, &token.Email, &token.Name, &token.Secret,
			&userID, &token.CreatedAt, &token.UpdatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			token.UserID = &userID.String
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = []*domain.InviteToken{}
	}
	return tokens, nil
}

func (r *inviteTokenRepository) UpdateName(ctx context.Context, tokenID, name string) error {
	query := `
		UPDATE invite_tokens
		SET name = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, tokenID, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *inviteTokenRepository) LinkUserByEmail(ctx context.Context, email, userID string) error {
	query := `
		UPDATE invite_tokens
		SET user_id = $2, updated_at = NOW()
		WHERE email = $1 AND user_id IS NULL
	`
	_, err := r.DB.ExecContext(ctx, query, email, userID)
	return err
}
