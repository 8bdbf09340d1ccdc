package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"guestlist/internal/domain"
)

type rsvpService struct {
	eventRepo      domain.EventRepository
	tokenRepo      domain.InviteTokenRepository
	rsvpRepo       domain.RSVPRepository
	contextTimeout time.Duration

	// eventLocks serializes the capacity check-then-insert per event so two
	// near-limit submissions cannot both pass the check.
	eventLocks sync.Map // eventID -> *sync.Mutex
}

// NewRSVPService creates the RSVP admission engine with the given repositories.
func NewRSVPService(
	eventRepo domain.EventRepository,
	tokenRepo domain.InviteTokenRepository,
	rsvpRepo domain.RSVPRepository,
	timeout time.Duration,
) domain.RSVPService {
	return &rsvpService{
		eventRepo:      eventRepo,
		tokenRepo:      tokenRepo,
		rsvpRepo:       rsvpRepo,
		contextTimeout: timeout,
	}
}

func (s *rsvpService) lockEvent(eventID string) *sync.Mutex {
	mu, _ := s.eventLocks.LoadOrStore(eventID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *rsvpService) SubmitUserRSVP(ctx context.Context, eventID, callerID, status string) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.ValidRSVPStatus(status) {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// Events owned by someone else behave as not found.
	if event.OwnerID != callerID {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	userID := callerID
	rsvp := &domain.RSVP{
		EventID:   eventID,
		UserID:    &userID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.rsvpRepo.UpsertByEventAndUser(ctx, rsvp); err != nil {
		return nil, fmt.Errorf("upsert rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *rsvpService) SubmitTokenRSVP(ctx context.Context, secret string, req domain.TokenRSVPRequest) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if req.Status != domain.RSVPStatusGoing && req.Status != domain.RSVPStatusNotGoing {
		return nil, domain.ErrInvalidInput
	}
	if !domain.ValidDietary(req.Dietary) || !domain.ValidDietary(req.CompanionDietary) {
		return nil, domain.ErrInvalidInput
	}
	// Companion count is clamped, not rejected.
	if req.Companions < 0 {
		req.Companions = 0
	}
	if req.Companions > domain.MaxCompanions {
		req.Companions = domain.MaxCompanions
	}

	token, err := s.tokenRepo.GetBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invite token: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, token.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// A token may respond exactly once. Resubmission returns the original
	// response unchanged so the caller can read it back.
	if existing, err := s.rsvpRepo.GetByEventAndToken(ctx, event.ID, token.ID); err == nil {
		return existing, domain.ErrAlreadyResponded
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get rsvp: %w", err)
	}

	mu := s.lockEvent(event.ID)
	mu.Lock()
	defer mu.Unlock()

	if req.Status == domain.RSVPStatusGoing {
		current, err := s.rsvpRepo.CountGoingAttendees(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("count going attendees: %w", err)
		}
		requested := 1 + req.Companions
		if current+requested > event.Capacity {
			remaining := event.Capacity - current
			if remaining < 0 {
				remaining = 0
			}
			return nil, &domain.CapacityError{RemainingSpots: remaining}
		}
	}

	now := time.Now()
	tokenID := token.ID
	rsvp := &domain.RSVP{
		EventID:          event.ID,
		TokenID:          &tokenID,
		Status:           req.Status,
		Companions:       req.Companions,
		GuestName:        req.GuestName,
		GuestEmail:       req.GuestEmail,
		Dietary:          req.Dietary,
		CompanionDietary: req.CompanionDietary,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.rsvpRepo.Create(ctx, rsvp); err != nil {
		return nil, fmt.Errorf("create rsvp: %w", err)
	}

	// Reflect the self-reported name on the guest list. Best effort: the
	// response itself is already committed.
	if req.GuestName != "" && req.GuestName != token.Name {
		if err := s.tokenRepo.UpdateName(ctx, token.ID, req.GuestName); err != nil {
			return rsvp, nil
		}
	}
	return rsvp, nil
}

func (s *rsvpService) GetTokenRSVPStatus(ctx context.Context, secret string) (*domain.TokenRSVPStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	token, err := s.tokenRepo.GetBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invite token: %w", err)
	}

	rsvp, err := s.rsvpRepo.GetByEventAndToken(ctx, token.EventID, token.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.TokenRSVPStatus{HasResponded: false}, nil
		}
		return nil, fmt.Errorf("get rsvp: %w", err)
	}
	return &domain.TokenRSVPStatus{
		HasResponded:     true,
		Status:           rsvp.Status,
		Companions:       rsvp.Companions,
		TotalAttendees:   rsvp.TotalAttendees(),
		Dietary:          rsvp.Dietary,
		CompanionDietary: rsvp.CompanionDietary,
	}, nil
}

func (s *rsvpService) ComputeDietaryStatistics(ctx context.Context, eventID, callerID string) (*domain.DietaryStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

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

	// Going responses only. "maybe" is excluded here just as it is from
	// capacity accounting.
	rsvps, err := s.rsvpRepo.ListGoingByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list going rsvps: %w", err)
	}

	stats := &domain.DietaryStats{}
	bump := func(pref string) {
		switch pref {
		case domain.DietaryNonVeg:
			stats.NonVeg++
		case domain.DietaryVeg:
			stats.Veg++
		case domain.DietaryVegan:
			stats.Vegan++
		default:
			stats.NotSpecified++
		}
	}
	for _, r := range rsvps {
		bump(r.Dietary)
		if r.Companions > 0 {
			bump(r.CompanionDietary)
		}
	}
	return stats, nil
}
