package domain

import (
	"context"
	"time"
)

// RSVP statuses. Token-path responses are restricted to going/not_going:
// an organizer can be ambiguous, an anonymous invitee must commit.
const (
	RSVPStatusGoing    = "going"
	RSVPStatusMaybe    = "maybe"
	RSVPStatusNotGoing = "not_going"
)

// Dietary preference values. Empty string means not specified.
const (
	DietaryNonVeg = "nonveg"
	DietaryVeg    = "veg"
	DietaryVegan  = "vegan"
)

// MaxCompanions bounds the companion count on token-path responses.
const MaxCompanions = 5

// RSVP is an attendance response bound to exactly one identity: either a
// registered user or an invitation token, never both and never neither.
// swagger:model RSVP
type RSVP struct {
	ID                 string    `json:"id"`
	EventID            string    `json:"event_id"`
	UserID             *string   `json:"user_id,omitempty"`
	TokenID            *string   `json:"token_id,omitempty"`
	Status             string    `json:"status"`
	Companions         int       `json:"companions"`
	GuestName          string    `json:"guest_name,omitempty"`
	GuestEmail         string    `json:"guest_email,omitempty"`
	Dietary            string    `json:"dietary_preference,omitempty"`
	CompanionDietary   string    `json:"companion_dietary_preference,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TotalAttendees returns the number of seats this response occupies:
// 1 + companions when going, 0 otherwise. "maybe" responses never count
// toward capacity.
func (r *RSVP) TotalAttendees() int {
	if r.Status == RSVPStatusGoing {
		return 1 + r.Companions
	}
	return 0
}

// ValidRSVPStatus reports whether s is one of the three statuses.
func ValidRSVPStatus(s string) bool {
	return s == RSVPStatusGoing || s == RSVPStatusMaybe || s == RSVPStatusNotGoing
}

// ValidDietary reports whether s is a recognized dietary preference or unset.
func ValidDietary(s string) bool {
	return s == "" || s == DietaryNonVeg || s == DietaryVeg || s == DietaryVegan
}

// DietaryStats buckets going attendees by dietary preference. Companions are
// counted once per response when companions > 0, crediting notSpecified when
// the companion preference is absent. "maybe" responses are excluded.
// swagger:model DietaryStats
type DietaryStats struct {
	NonVeg       int `json:"nonveg"`
	Veg          int `json:"veg"`
	Vegan        int `json:"vegan"`
	NotSpecified int `json:"not_specified"`
}

// TokenRSVPRequest carries a token-path submission into the admission engine.
type TokenRSVPRequest struct {
	Status           string
	Companions       int
	GuestName        string
	GuestEmail       string
	Dietary          string
	CompanionDietary string
}

// TokenRSVPStatus reports whether a token has responded and with what.
// swagger:model TokenRSVPStatus
type TokenRSVPStatus struct {
	HasResponded     bool   `json:"has_responded"`
	Status           string `json:"status,omitempty"`
	Companions       int    `json:"companions,omitempty"`
	TotalAttendees   int    `json:"total_attendees,omitempty"`
	Dietary          string `json:"dietary_preference,omitempty"`
	CompanionDietary string `json:"companion_dietary_preference,omitempty"`
}

// RSVPRepository defines storage operations for attendance responses.
// Uniqueness of (event, user) and (event, token) is enforced by partial
// unique indexes scoped to rows where the identity column is set.
type RSVPRepository interface {
	Create(ctx context.Context, rsvp *RSVP) error
	// UpsertByEventAndUser replaces or creates the unique (event, user) row.
	UpsertByEventAndUser(ctx context.Context, rsvp *RSVP) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error)
	GetByEventAndToken(ctx context.Context, eventID, tokenID string) (*RSVP, error)
	// CountGoingAttendees returns the sum of (1 + companions) over all going
	// responses for the event.
	CountGoingAttendees(ctx context.Context, eventID string) (int, error)
	ListGoingByEventID(ctx context.Context, eventID string) ([]*RSVP, error)
	ListByEventID(ctx context.Context, eventID string) ([]*RSVP, error)
}

// RSVPService is the admission engine: it validates and persists attendance
// responses under the capacity and identity-uniqueness constraints.
type RSVPService interface {
	// SubmitUserRSVP upserts the caller-owned event's (event, user) response.
	// No capacity check applies on this path.
	SubmitUserRSVP(ctx context.Context, eventID, callerID, status string) (*RSVP, error)
	// SubmitTokenRSVP admits an anonymous response for the invitation secret.
	// Returns ErrAlreadyResponded (with the existing response) on resubmission
	// and *CapacityError when admission would overshoot the event capacity.
	SubmitTokenRSVP(ctx context.Context, secret string, req TokenRSVPRequest) (*RSVP, error)
	GetTokenRSVPStatus(ctx context.Context, secret string) (*TokenRSVPStatus, error)
	ComputeDietaryStatistics(ctx context.Context, eventID, callerID string) (*DietaryStats, error)
}
