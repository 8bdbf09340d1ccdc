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

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type TemplateController struct {
	Logger  *slog.Logger
	Service domain.TemplateService
}

func NewTemplateController(logger *slog.Logger, svc domain.TemplateService) *TemplateController {
	return &TemplateController{
		Logger:  logger,
		Service: svc,
	}
}

// TemplateRequest is the request body for creating or updating a template.
type TemplateRequest struct {
	EventID      *string `json:"event_id"`
	Subject      string  `json:"subject"`
	Heading      string  `json:"heading"`
	Message      string  `json:"message"`
	ButtonLabel  string  `json:"button_label"`
	PrimaryColor string  `json:"primary_color"`
}

// Validate implements helpers.Validator.
func (t *TemplateRequest) Validate() []string {
	var errs []string
	t.Subject = strings.TrimSpace(t.Subject)
	if t.Subject == "" {
		errs = append(errs, "subject is required")
	}
	if t.EventID != nil && !uuidRegex.MatchString(*t.EventID) {
		errs = append(errs, "event_id must be a UUID")
	}
	t.PrimaryColor = strings.TrimSpace(t.PrimaryColor)
	if t.PrimaryColor != "" && !hexColorRegex.MatchString(t.PrimaryColor) {
		errs = append(errs, "primary_color must be a #rrggbb hex color")
	}
	return errs
}

// CreateTemplate godoc
// @Summary Create an invitation email template
// @Description A template with event_id applies to that event only. A template without event_id is reusable and can be promoted to the organizer default.
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.TemplateRequest true "Template"
// @Success 201 {object} helpers.APIResponse "data is the created template"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event_id not owned)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates [post]
func (c *TemplateController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	tpl := &domain.EmailTemplate{
		OwnerID:      userID,
		EventID:      req.EventID,
		Subject:      req.Subject,
		Heading:      req.Heading,
		Message:      req.Message,
		ButtonLabel:  req.ButtonLabel,
		PrimaryColor: req.PrimaryColor,
	}
	if err := c.Service.CreateTemplate(r.Context(), tpl); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid template")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, tpl)
}

// ListTemplates godoc
// @Summary List the caller's templates
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is the list of templates"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates [get]
func (c *TemplateController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	tpls, err := c.Service.ListMyTemplates(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tpls)
}

// UpdateTemplate godoc
// @Summary Replace a template's content
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param templateID path string true "Template ID (UUID)"
// @Param body body controllers.TemplateRequest true "Template content"
// @Success 200 {object} helpers.APIResponse "data is the updated template"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (missing or not owned)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates/{templateID} [put]
func (c *TemplateController) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := r.PathValue("templateID")
	if !uuidRegex.MatchString(templateID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid templateID")
		return
	}

	var req TemplateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	tpl, err := c.Service.UpdateTemplate(r.Context(), &domain.EmailTemplate{
		ID:           templateID,
		OwnerID:      userID,
		EventID:      req.EventID,
		Subject:      req.Subject,
		Heading:      req.Heading,
		Message:      req.Message,
		ButtonLabel:  req.ButtonLabel,
		PrimaryColor: req.PrimaryColor,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "template not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid template")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tpl)
}

// DeleteTemplate godoc
// @Summary Delete a template
// @Description Deleting the organizer's current default clears the default reference; invitations fall back to hardcoded content.
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param templateID path string true "Template ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is null"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (missing or not owned)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates/{templateID} [delete]
func (c *TemplateController) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := r.PathValue("templateID")
	if !uuidRegex.MatchString(templateID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid templateID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.DeleteTemplate(r.Context(), templateID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "template not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nil)
}

// SetDefaultTemplate godoc
// @Summary Mark a template as the organizer default
// @Description Repoints the organizer's default template reference in a single update, replacing any previous default. Only templates without an event_id can become the default.
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param templateID path string true "Template ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is null"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (event-scoped template)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (missing or not owned)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /templates/{templateID}/default [post]
func (c *TemplateController) SetDefaultTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := r.PathValue("templateID")
	if !uuidRegex.MatchString(templateID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid templateID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.SetDefaultTemplate(r.Context(), templateID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "template not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "event-scoped templates cannot be the default")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nil)
}
