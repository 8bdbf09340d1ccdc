package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"guestlist/internal/delivery/http/helpers"
	"guestlist/internal/delivery/http/middleware"
	"guestlist/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// tokenSecretRegex matches a 64-char hex invitation secret.
var tokenSecretRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// UserRSVPRequest is the request body for POST /rsvps/{eventID}.
type UserRSVPRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (r *UserRSVPRequest) Validate() []string {
	r.Status = strings.TrimSpace(strings.ToLower(r.Status))
	if !domain.ValidRSVPStatus(r.Status) {
		return []string{`status must be "going", "maybe", or "not_going"`}
	}
	return nil
}

// SubmitUserRSVP godoc
// @Summary Submit or replace the organizer's own RSVP for an event
// @Description Upserts the (event, user) RSVP for the authenticated organizer. Resubmission replaces the previous status. No capacity check applies on this path.
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UserRSVPRequest true "RSVP status"
// @Success 200 {object} helpers.APIResponse "data is the stored RSVP"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (missing or not owned)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvps/{eventID} [post]
func (c *RSVPController) SubmitUserRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	var req UserRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	rsvp, err := c.Service.SubmitUserRSVP(r.Context(), eventID, userID, req.Status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid status")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// TokenRSVPRequest is the request body for POST /rsvps/token/{token}.
type TokenRSVPRequest struct {
	Status           string `json:"status"`
	Companions       int    `json:"companions"`
	GuestName        string `json:"guest_name"`
	GuestEmail       string `json:"guest_email"`
	Dietary          string `json:"dietary_preference"`
	CompanionDietary string `json:"companion_dietary_preference"`
}

// Validate implements helpers.Validator.
func (r *TokenRSVPRequest) Validate() []string {
	var errs []string
	r.Status = strings.TrimSpace(strings.ToLower(r.Status))
	if r.Status != domain.RSVPStatusGoing && r.Status != domain.RSVPStatusNotGoing {
		errs = append(errs, `status must be "going" or "not_going"`)
	}
	r.Dietary = strings.TrimSpace(strings.ToLower(r.Dietary))
	r.CompanionDietary = strings.TrimSpace(strings.ToLower(r.CompanionDietary))
	if !domain.ValidDietary(r.Dietary) {
		errs = append(errs, `dietary_preference must be "nonveg", "veg", or "vegan"`)
	}
	if !domain.ValidDietary(r.CompanionDietary) {
		errs = append(errs, `companion_dietary_preference must be "nonveg", "veg", or "vegan"`)
	}
	r.GuestName = strings.TrimSpace(r.GuestName)
	r.GuestEmail = strings.TrimSpace(strings.ToLower(r.GuestEmail))
	return errs
}

// TokenRSVPResponse is the success payload for POST /rsvps/token/{token}.
type TokenRSVPResponse struct {
	RSVP           *domain.RSVP `json:"rsvp"`
	TotalAttendees int          `json:"total_attendees"`
}

// CapacityExceededDetails is attached to capacity_exceeded error responses.
type CapacityExceededDetails struct {
	RemainingSpots int `json:"remaining_spots"`
}

// SubmitTokenRSVP godoc
// @Summary Submit an anonymous RSVP via invitation token
// @Description Records the invitee's response for the event the token belongs to. A token may respond exactly once; a second submission returns already_responded with the original response. Companions are clamped to 0..5. "going" responses are admitted only while event capacity allows.
// @Tags rsvps
// @Accept json
// @Produce json
// @Param token path string true "Invitation token secret (64 hex chars)"
// @Param body body controllers.TokenRSVPRequest true "Response"
// @Success 201 {object} helpers.APIResponse "data contains the RSVP and total_attendees"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, already_responded, or capacity_exceeded (details.remaining_spots)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown token)"
// @Failure 429 {object} helpers.APIResponse "rate limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvps/token/{token} [post]
func (c *RSVPController) SubmitTokenRSVP(w http.ResponseWriter, r *http.Request) {
	secret := r.PathValue("token")
	if !tokenSecretRegex.MatchString(secret) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
		return
	}

	var req TokenRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	rsvp, err := c.Service.SubmitTokenRSVP(r.Context(), secret, domain.TokenRSVPRequest{
		Status:           req.Status,
		Companions:       req.Companions,
		GuestName:        req.GuestName,
		GuestEmail:       req.GuestEmail,
		Dietary:          req.Dietary,
		CompanionDietary: req.CompanionDietary,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
			return
		}
		if errors.Is(err, domain.ErrAlreadyResponded) {
			// rsvp carries the original, unchanged response.
			helpers.WriteJSONErrorDetails(w, http.StatusBadRequest, helpers.ErrCodeAlreadyResponded,
				"a response has already been recorded for this invitation", rsvp)
			return
		}
		if ce, ok := domain.IsCapacityError(err); ok {
			helpers.WriteJSONErrorDetails(w, http.StatusBadRequest, helpers.ErrCodeCapacityExceeded,
				ce.Error(), CapacityExceededDetails{RemainingSpots: ce.RemainingSpots})
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid request")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, TokenRSVPResponse{
		RSVP:           rsvp,
		TotalAttendees: rsvp.TotalAttendees(),
	})
}

// GetTokenRSVPStatus godoc
// @Summary Check whether an invitation token has responded
// @Description Read-only: reports has_responded and, if responded, the status, companions, derived total attendees, and dietary fields.
// @Tags rsvps
// @Produce json
// @Param token path string true "Invitation token secret (64 hex chars)"
// @Success 200 {object} helpers.APIResponse "data is the token RSVP status"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown token)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvps/token/{token}/status [get]
func (c *RSVPController) GetTokenRSVPStatus(w http.ResponseWriter, r *http.Request) {
	secret := r.PathValue("token")
	if !tokenSecretRegex.MatchString(secret) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
		return
	}

	status, err := c.Service.GetTokenRSVPStatus(r.Context(), secret)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invitation not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, status)
}

// GetDietaryStats godoc
// @Summary Dietary preference breakdown for an event
// @Description Buckets going attendees (and their companions, when present) by dietary preference. "maybe" responses are excluded, matching capacity accounting.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is the bucketed counts"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvps/event/{eventID}/dietary-stats [get]
func (c *RSVPController) GetDietaryStats(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	stats, err := c.Service.ComputeDietaryStatistics(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
