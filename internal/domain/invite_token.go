package domain

import (
	"context"
	"time"
)

// InviteToken maps an opaque secret to an event and an invited email address.
// Secret is 32 random bytes, hex-encoded, and globally unique. UserID is set
// when the invited email belongs to a registered user; the mapping is
// maintained at signup and token creation rather than by join-time email
// matching.
// swagger:model InviteToken
type InviteToken struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Secret    string    `json:"-"`
	UserID    *string   `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InviteTokenRepository defines storage operations for invitation tokens.
type InviteTokenRepository interface {
	Create(ctx context.Context, token *InviteToken) error
	GetBySecret(ctx context.Context, secret string) (*InviteToken, error)
	ListByEventID(ctx context.Context, eventID string) ([]*InviteToken, error)
	// UpdateName stores the guest-provided display name after a response.
	UpdateName(ctx context.Context, tokenID, name string) error
	// LinkUserByEmail sets user_id on all unlinked tokens issued to email.
	LinkUserByEmail(ctx context.Context, email, userID string) error
}

// InviteeStatus is a resolved RSVP status for an invitee listing entry.
// "pending" is synthetic: no response exists on either identity path.
type InviteeStatus string

const (
	InviteeStatusPending InviteeStatus = "pending"
)

// Invitee is an invitation token joined against its resolved RSVP.
// swagger:model Invitee
type Invitee struct {
	Token       *InviteToken `json:"token"`
	Status      string       `json:"status"`
	Companions  int          `json:"companions"`
	RespondedAt *time.Time   `json:"responded_at,omitempty"`
}

// InviteTokenWithEmailResult bundles a created token with the outcome of the
// invitation email dispatch. Dispatch failure never rolls back the token.
type InviteTokenWithEmailResult struct {
	Token     *InviteToken `json:"token"`
	EmailSent bool         `json:"email_sent"`
}

// InviteService defines organizer-facing invitation operations.
type InviteService interface {
	// CreateInviteToken creates a token for the event and sends the rendered
	// invitation email. The returned EmailSent flag is false when dispatch
	// failed; the token itself is still created.
	CreateInviteToken(ctx context.Context, eventID, callerID, email, name string) (*InviteTokenWithEmailResult, error)
	// ListInvitees returns the event's tokens joined with their resolved RSVP
	// status, filtered by search text and status, newest tokens first.
	ListInvitees(ctx context.Context, eventID, callerID string, search, statusFilter string, params PaginationParams) ([]*Invitee, int, error)
}
