package domain

import (
	"context"
	"time"
)

// EmailTemplate holds organizer-owned styling and content for invitation
// emails. EventID scopes a template to one event; a nil EventID template can
// serve as the organizer's default (referenced from the user record).
// swagger:model EmailTemplate
type EmailTemplate struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	EventID      *string   `json:"event_id,omitempty"`
	Subject      string    `json:"subject"`
	Heading      string    `json:"heading"`
	Message      string    `json:"message"`
	ButtonLabel  string    `json:"button_label"`
	PrimaryColor string    `json:"primary_color"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Hardcoded fallbacks used when an organizer has no template at all.
const (
	DefaultInviteSubject      = "You're invited!"
	DefaultInviteHeading      = "You're invited"
	DefaultInviteMessage      = "We'd love to see you there. Let us know if you can make it."
	DefaultInviteButtonLabel  = "Respond to invitation"
	DefaultInvitePrimaryColor = "#4f46e5"
)

// EmailTemplateRepository defines storage operations for invitation templates.
type EmailTemplateRepository interface {
	Create(ctx context.Context, tpl *EmailTemplate) error
	GetByID(ctx context.Context, id string) (*EmailTemplate, error)
	GetByEventID(ctx context.Context, eventID string) (*EmailTemplate, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*EmailTemplate, error)
	Update(ctx context.Context, tpl *EmailTemplate) error
	Delete(ctx context.Context, id string) error
}

// TemplateService manages invitation templates and resolves the template to
// use for a given event: event-scoped first, then the organizer default,
// then hardcoded values.
type TemplateService interface {
	CreateTemplate(ctx context.Context, tpl *EmailTemplate) error
	ListMyTemplates(ctx context.Context, callerID string) ([]*EmailTemplate, error)
	UpdateTemplate(ctx context.Context, tpl *EmailTemplate) (*EmailTemplate, error)
	DeleteTemplate(ctx context.Context, templateID, callerID string) error
	// SetDefaultTemplate atomically repoints the organizer's default; any
	// previous default is replaced by the same update.
	SetDefaultTemplate(ctx context.Context, templateID, callerID string) error
	// ResolveTemplate never fails with NotFound: missing templates fall back
	// to the organizer default and finally to hardcoded content.
	ResolveTemplate(ctx context.Context, ownerID string, eventID string) (*EmailTemplate, error)
}
