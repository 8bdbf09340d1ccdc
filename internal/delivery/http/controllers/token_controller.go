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

var inviteEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type TokenController struct {
	Logger  *slog.Logger
	Service domain.InviteService
}

func NewTokenController(logger *slog.Logger, svc domain.InviteService) *TokenController {
	return &TokenController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateTokenRequest is the request body for POST /tokens/{eventID}.
type CreateTokenRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements helpers.Validator.
func (r *CreateTokenRequest) Validate() []string {
	var errs []string
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.Email == "" {
		errs = append(errs, "email is required")
	} else if !inviteEmailRegex.MatchString(r.Email) {
		errs = append(errs, "invalid email format")
	}
	r.Name = strings.TrimSpace(r.Name)
	return errs
}

// CreateToken godoc
// @Summary Create an invitation token and send the invitation email
// @Description Creates a unique invitation token for the email address and dispatches the rendered invitation. Email dispatch failure does not roll back the token; the response carries email_sent=false instead.
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.CreateTokenRequest true "Invitee"
// @Success 201 {object} helpers.APIResponse "data contains the token and email_sent flag"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (missing or not owned)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tokens/{eventID} [post]
func (c *TokenController) CreateToken(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	var req CreateTokenRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.CreateInviteToken(r.Context(), eventID, userID, req.Email, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid email")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// InviteeListResponse is the success payload for GET /tokens/{eventID}.
type InviteeListResponse struct {
	Invitees   []*domain.Invitee      `json:"invitees"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListInvitees godoc
// @Summary List an event's invitees with resolved RSVP status
// @Description Joins invitation tokens against their resolved responses (token responses take precedence over the linked user's response). Supports case-insensitive search over email/name and a status filter; "pending" selects invitees with no response yet. Ordered by token creation time, newest first.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Param search query string false "Substring match on email or name"
// @Param status query string false "going | maybe | not_going | pending"
// @Success 200 {object} helpers.APIResponse "data contains invitees and pagination metadata"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (bad status filter)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tokens/{eventID} [get]
func (c *TokenController) ListInvitees(w http.ResponseWriter, r *http.Request) {
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

	params := helpers.ParsePagination(r)
	search := r.URL.Query().Get("search")
	statusFilter := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("status")))

	invitees, total, err := c.Service.ListInvitees(r.Context(), eventID, userID, search, statusFilter, params)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid status filter")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, InviteeListResponse{
		Invitees:   invitees,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
