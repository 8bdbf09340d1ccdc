package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"guestlist/internal/domain"
)

type templateService struct {
	templateRepo   domain.EmailTemplateRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewTemplateService creates a TemplateService.
func NewTemplateService(templateRepo domain.EmailTemplateRepository, userRepo domain.UserRepository, timeout time.Duration) domain.TemplateService {
	return &templateService{
		templateRepo:   templateRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

func (s *templateService) CreateTemplate(ctx context.Context, tpl *domain.EmailTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if tpl.OwnerID == "" {
		return fmt.Errorf("template owner is required")
	}
	if strings.TrimSpace(tpl.Subject) == "" {
		return domain.ErrInvalidInput
	}
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = time.Now()
	return s.templateRepo.Create(ctx, tpl)
}

func (s *templateService) ListMyTemplates(ctx context.Context, callerID string) ([]*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tpls, err := s.templateRepo.ListByOwnerID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if tpls == nil {
		tpls = []*domain.EmailTemplate{}
	}
	return tpls, nil
}

// getOwnedTemplate hides templates owned by someone else behind ErrNotFound.
func (s *templateService) getOwnedTemplate(ctx context.Context, templateID, callerID string) (*domain.EmailTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if tpl.OwnerID != callerID {
		return nil, domain.ErrNotFound
	}
	return tpl, nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, tpl *domain.EmailTemplate) (*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getOwnedTemplate(ctx, tpl.ID, tpl.OwnerID); err != nil {
		return nil, err
	}
	tpl.UpdatedAt = time.Now()
	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return tpl, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, templateID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getOwnedTemplate(ctx, templateID, callerID); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, templateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func (s *templateService) SetDefaultTemplate(ctx context.Context, templateID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tpl, err := s.getOwnedTemplate(ctx, templateID, callerID)
	if err != nil {
		return err
	}
	// Event-scoped templates already apply to their event and cannot double
	// as the organizer-wide default.
	if tpl.EventID != nil {
		return domain.ErrInvalidInput
	}
	// One UPDATE on the user row: setting the new default unsets the old one
	// in the same statement.
	if err := s.userRepo.SetDefaultTemplate(ctx, callerID, &templateID); err != nil {
		return fmt.Errorf("set default template: %w", err)
	}
	return nil
}

func (s *templateService) ResolveTemplate(ctx context.Context, ownerID string, eventID string) (*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Event-scoped template first.
	if eventID != "" {
		tpl, err := s.templateRepo.GetByEventID(ctx, eventID)
		if err == nil {
			return tpl, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get event template: %w", err)
		}
	}

	// Organizer default next.
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner != nil && owner.DefaultTemplateID != nil {
		tpl, err := s.templateRepo.GetByID(ctx, *owner.DefaultTemplateID)
		if err == nil {
			return tpl, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get default template: %w", err)
		}
	}

	// Hardcoded fallback so invitations can always be sent.
	return &domain.EmailTemplate{
		OwnerID:      ownerID,
		Subject:      domain.DefaultInviteSubject,
		Heading:      domain.DefaultInviteHeading,
		Message:      domain.DefaultInviteMessage,
		ButtonLabel:  domain.DefaultInviteButtonLabel,
		PrimaryColor: domain.DefaultInvitePrimaryColor,
	}, nil
}
