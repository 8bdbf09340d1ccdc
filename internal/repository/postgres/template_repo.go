package postgres

import (
	"context"
	"database/sql"
	"errors"

	"guestlist/internal/domain"
)

type emailTemplateRepository struct {
	DB *sql.DB
}

func NewEmailTemplateRepository(db *sql.DB) domain.EmailTemplateRepository {
	return &emailTemplateRepository{DB: db}
}

const templateColumns = `id, owner_id, event_id, subject, heading, message, button_label, primary_color, created_at, updated_at`

func (r *emailTemplateRepository) Create(ctx context.Context, tpl *domain.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (owner_id, event_id, subject, heading, message, button_label, primary_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		tpl.OwnerID, tpl.EventID, tpl.Subject, tpl.Heading, tpl.Message,
		tpl.ButtonLabel, tpl.PrimaryColor, tpl.CreatedAt, tpl.UpdatedAt).
		Scan(&tpl.ID)
}

func (r *emailTemplateRepository) GetByID(ctx context.Context, id string) (*domain.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = $1`
	return r.scanTemplate(r.DB.QueryRowContext(ctx, query, id))
}

func (r *emailTemplateRepository) GetByEventID(ctx context.Context, eventID string) (*domain.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE event_id = $1`
	return r.scanTemplate(r.DB.QueryRowContext(ctx, query, eventID))
}

func (r *emailTemplateRepository) scanTemplate(row *sql.Row) (*domain.EmailTemplate, error) {
	tpl := &domain.EmailTemplate{}
	var eventID sql.NullString
	err := row.Scan(
		&tpl.ID, &tpl.OwnerID, &eventID, &tpl.Subject, &tpl.Heading, &tpl.Message,
		&tpl.ButtonLabel, &tpl.PrimaryColor, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if eventID.Valid {
		tpl.EventID = &eventID.String
	}
	return tpl, nil
}

func (r *emailTemplateRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.EmailTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM email_templates
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tpls []*domain.EmailTemplate
	for rows.Next() {
		tpl := &domain.EmailTemplate{}
		var eventID sql.NullString
		if err := rows.Scan(
			&tpl.ID, &tpl.OwnerID, &eventID, &tpl.Subject, &tpl.Heading, &tpl.Message,
			&tpl.ButtonLabel, &tpl.PrimaryColor, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, err
		}
		if eventID.Valid {
			tpl.EventID = &eventID.String
		}
		tpls = append(tpls, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if tpls == nil {
		tpls = []*domain.EmailTemplate{}
	}
	return tpls, nil
}

func (r *emailTemplateRepository) Update(ctx context.Context, tpl *domain.EmailTemplate) error {
	query := `
		UPDATE email_templates
		SET event_id = $2, subject = $3, heading = $4, message = $5, button_label = $6, primary_color = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		tpl.ID, tpl.EventID, tpl.Subject, tpl.Heading, tpl.Message,
		tpl.ButtonLabel, tpl.PrimaryColor, tpl.UpdatedAt)
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

func (r *emailTemplateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
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
