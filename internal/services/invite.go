package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"guestlist/internal/domain"
)

var inviteEmailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type inviteService struct {
	eventRepo       domain.EventRepository
	tokenRepo       domain.InviteTokenRepository
	rsvpRepo        domain.RSVPRepository
	userRepo        domain.UserRepository
	templateService domain.TemplateService
	emailService    domain.EmailService
	logger          *slog.Logger
	rsvpBaseURL     string
	contextTimeout  time.Duration
}

// NewInviteService creates an InviteService. rsvpBaseURL is the public URL
// prefix the token secret is appended to in invitation emails.
func NewInviteService(
	eventRepo domain.EventRepository,
	tokenRepo domain.InviteTokenRepository,
	rsvpRepo domain.RSVPRepository,
	userRepo domain.UserRepository,
	templateService domain.TemplateService,
	emailService domain.EmailService,
	logger *slog.Logger,
	rsvpBaseURL string,
	timeout time.Duration,
) domain.InviteService {
	return &inviteService{
		eventRepo:       eventRepo,
		tokenRepo:       tokenRepo,
		rsvpRepo:        rsvpRepo,
		userRepo:        userRepo,
		templateService: templateService,
		emailService:    emailService,
		logger:          logger,
		rsvpBaseURL:     strings.TrimSuffix(rsvpBaseURL, "/"),
		contextTimeout:  timeout,
	}
}

const tokenSecretBytes = 32

func generateTokenSecret() (string, error) {
	b := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *inviteService) CreateInviteToken(ctx context.Context, eventID, callerID, email, name string) (*domain.InviteTokenWithEmailResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if !inviteEmailRegexp.MatchString(email) {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != callerID {
		return nil, domain.ErrNotFound
	}

	secret, err := generateTokenSecret()
	if err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}

	now := time.Now()
	token := &domain.InviteToken{
		EventID:   eventID,
		Email:     email,
		Name:      strings.TrimSpace(name),
		Secret:    secret,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Declared email-to-user mapping, set at creation time instead of being
	// re-derived by string matching at list time.
	if user, err := s.userRepo.GetByEmail(ctx, email); err == nil && user != nil {
		token.UserID = &user.ID
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("create invite token: %w", err)
	}

	emailSent := s.sendInvitationEmail(ctx, event, token)
	return &domain.InviteTokenWithEmailResult{Token: token, EmailSent: emailSent}, nil
}

// sendInvitationEmail renders and dispatches the invitation. Failures are
// logged and reported through the return value; the token stays created.
func (s *inviteService) sendInvitationEmail(ctx context.Context, event *domain.Event, token *domain.InviteToken) bool {
	tpl, err := s.templateService.ResolveTemplate(ctx, event.OwnerID, event.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "resolve invitation template", "event_id", event.ID, "err", err)
		return false
	}

	hostName := "Your host"
	if owner, err := s.userRepo.GetByID(ctx, event.OwnerID); err == nil && owner != nil {
		if n := strings.TrimSpace(owner.Name + " " + owner.LastName); n != "" {
			hostName = n
		}
	}

	data := &domain.InvitationEmailData{
		Email:        token.Email,
		GuestName:    token.Name,
		EventTitle:   event.Title,
		EventDate:    event.EventDate.Format("Monday, 2 January 2006 at 15:04"),
		Location:     event.Location,
		HostName:     hostName,
		RSVPLink:     s.rsvpBaseURL + "/" + token.Secret,
		Subject:      tpl.Subject,
		Heading:      tpl.Heading,
		Message:      tpl.Message,
		ButtonLabel:  tpl.ButtonLabel,
		PrimaryColor: tpl.PrimaryColor,
	}
	if err := s.emailService.SendInvitation(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "send invitation email", "event_id", event.ID, "to", token.Email, "err", err)
		return false
	}
	return true
}

func (s *inviteService) ListInvitees(ctx context.Context, eventID, callerID string, search, statusFilter string, params domain.PaginationParams) ([]*domain.Invitee, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if statusFilter != "" && statusFilter != string(domain.InviteeStatusPending) && !domain.ValidRSVPStatus(statusFilter) {
		return nil, 0, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != callerID {
		return nil, 0, domain.ErrNotFound
	}

	// Tokens come back newest first; resolution and filtering happen before
	// pagination so page counts reflect the filtered set.
	tokens, err := s.tokenRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, 0, fmt.Errorf("list invite tokens: %w", err)
	}
	rsvps, err := s.rsvpRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, 0, fmt.Errorf("list rsvps: %w", err)
	}

	byToken := make(map[string]*domain.RSVP)
	byUser := make(map[string]*domain.RSVP)
	for _, r := range rsvps {
		if r.TokenID != nil {
			byToken[*r.TokenID] = r
		} else if r.UserID != nil {
			byUser[*r.UserID] = r
		}
	}

	search = strings.ToLower(strings.TrimSpace(search))
	var filtered []*domain.Invitee
	for _, tok := range tokens {
		if search != "" &&
			!strings.Contains(strings.ToLower(tok.Email), search) &&
			!strings.Contains(strings.ToLower(tok.Name), search) {
			continue
		}

		// Token-path response wins over the linked user's response.
		var resolved *domain.RSVP
		if r, ok := byToken[tok.ID]; ok {
			resolved = r
		} else if tok.UserID != nil {
			if r, ok := byUser[*tok.UserID]; ok {
				resolved = r
			}
		}

		inv := &domain.Invitee{Token: tok, Status: string(domain.InviteeStatusPending)}
		if resolved != nil {
			inv.Status = resolved.Status
			inv.Companions = resolved.Companions
			respondedAt := resolved.UpdatedAt
			inv.RespondedAt = &respondedAt
		}
		if statusFilter != "" && inv.Status != statusFilter {
			continue
		}
		filtered = append(filtered, inv)
	}

	total := len(filtered)
	start, end := params.Slice(total)
	page := filtered[start:end]
	if page == nil {
		page = []*domain.Invitee{}
	}
	return page, total, nil
}
