package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"guestlist/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockEventRepository struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	err    error
}

func newMockEventRepository(events ...*domain.Event) *mockEventRepository {
	m := &mockEventRepository{events: make(map[string]*domain.Event)}
	for _, ev := range events {
		m.events[ev.ID] = ev
	}
	return m
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if event.ID == "" {
		event.ID = fmt.Sprintf("ev-%d", len(m.events)+1)
	}
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (m *mockEventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Event
	for _, ev := range m.events {
		if ev.OwnerID == ownerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.Capacity != nil {
		ev.Capacity = *upd.Capacity
	}
	return ev, nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

type mockInviteTokenRepository struct {
	mu     sync.Mutex
	tokens []*domain.InviteToken
	err    error

	updatedNames map[string]string
	linkedEmails map[string]string // email -> userID
}

func newMockInviteTokenRepository(tokens ...*domain.InviteToken) *mockInviteTokenRepository {
	return &mockInviteTokenRepository{
		tokens:       tokens,
		updatedNames: make(map[string]string),
		linkedEmails: make(map[string]string),
	}
}

func (m *mockInviteTokenRepository) Create(ctx context.Context, token *domain.InviteToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if token.ID == "" {
		token.ID = fmt.Sprintf("tok-%d", len(m.tokens)+1)
	}
	// Newest first, matching the repository's ORDER BY created_at DESC.
	m.tokens = append([]*domain.InviteToken{token}, m.tokens...)
	return nil
}

func (m *mockInviteTokenRepository) GetBySecret(ctx context.Context, secret string) (*domain.InviteToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, t := range m.tokens {
		if t.Secret == secret {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInviteTokenRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.InviteToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.InviteToken
	for _, t := range m.tokens {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockInviteTokenRepository) UpdateName(ctx context.Context, tokenID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatedNames[tokenID] = name
	for _, t := range m.tokens {
		if t.ID == tokenID {
			t.Name = name
		}
	}
	return nil
}

func (m *mockInviteTokenRepository) LinkUserByEmail(ctx context.Context, email, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkedEmails[email] = userID
	for _, t := range m.tokens {
		if t.Email == email && t.UserID == nil {
			uid := userID
			t.UserID = &uid
		}
	}
	return nil
}

type mockRSVPRepository struct {
	mu   sync.Mutex
	rows []*domain.RSVP
	err  error
}

func newMockRSVPRepository(rows ...*domain.RSVP) *mockRSVPRepository {
	return &mockRSVPRepository{rows: rows}
}

func (m *mockRSVPRepository) Create(ctx context.Context, rsvp *domain.RSVP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, r := range m.rows {
		if r.EventID == rsvp.EventID && r.TokenID != nil && rsvp.TokenID != nil && *r.TokenID == *rsvp.TokenID {
			return domain.ErrAlreadyResponded
		}
	}
	rsvp.ID = fmt.Sprintf("rsvp-%d", len(m.rows)+1)
	m.rows = append(m.rows, rsvp)
	return nil
}

func (m *mockRSVPRepository) UpsertByEventAndUser(ctx context.Context, rsvp *domain.RSVP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, r := range m.rows {
		if r.EventID == rsvp.EventID && r.UserID != nil && rsvp.UserID != nil && *r.UserID == *rsvp.UserID {
			r.Status = rsvp.Status
			r.UpdatedAt = rsvp.UpdatedAt
			*rsvp = *r
			return nil
		}
	}
	rsvp.ID = fmt.Sprintf("rsvp-%d", len(m.rows)+1)
	m.rows = append(m.rows, rsvp)
	return nil
}

func (m *mockRSVPRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.EventID == eventID && r.UserID != nil && *r.UserID == userID {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRSVPRepository) GetByEventAndToken(ctx context.Context, eventID, tokenID string) (*domain.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.EventID == eventID && r.TokenID != nil && *r.TokenID == tokenID {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRSVPRepository) CountGoingAttendees(ctx context.Context, eventID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	total := 0
	for _, r := range m.rows {
		if r.EventID == eventID {
			total += r.TotalAttendees()
		}
	}
	return total, nil
}

func (m *mockRSVPRepository) ListGoingByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RSVP
	for _, r := range m.rows {
		if r.EventID == eventID && r.Status == domain.RSVPStatusGoing {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRSVPRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RSVP
	for _, r := range m.rows {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockUserRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	err     error

	defaultTemplates map[string]*string
}

func newMockUserRepository(users ...*domain.User) *mockUserRepository {
	m := &mockUserRepository{
		byID:             make(map[string]*domain.User),
		byEmail:          make(map[string]*domain.User),
		defaultTemplates: make(map[string]*string),
	}
	for _, u := range users {
		m.byID[u.ID] = u
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(m.byID)+1)
	}
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) SetDefaultTemplate(ctx context.Context, userID string, templateID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.DefaultTemplateID = templateID
	m.defaultTemplates[userID] = templateID
	return nil
}

type mockTemplateRepository struct {
	mu        sync.Mutex
	templates map[string]*domain.EmailTemplate
	err       error
}

func newMockTemplateRepository(tpls ...*domain.EmailTemplate) *mockTemplateRepository {
	m := &mockTemplateRepository{templates: make(map[string]*domain.EmailTemplate)}
	for _, tpl := range tpls {
		m.templates[tpl.ID] = tpl
	}
	return m
}

func (m *mockTemplateRepository) Create(ctx context.Context, tpl *domain.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if tpl.ID == "" {
		tpl.ID = fmt.Sprintf("tpl-%d", len(m.templates)+1)
	}
	m.templates[tpl.ID] = tpl
	return nil
}

func (m *mockTemplateRepository) GetByID(ctx context.Context, id string) (*domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tpl, ok := m.templates[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tpl, nil
}

func (m *mockTemplateRepository) GetByEventID(ctx context.Context, eventID string) (*domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tpl := range m.templates {
		if tpl.EventID != nil && *tpl.EventID == eventID {
			return tpl, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTemplateRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.EmailTemplate
	for _, tpl := range m.templates {
		if tpl.OwnerID == ownerID {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (m *mockTemplateRepository) Update(ctx context.Context, tpl *domain.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[tpl.ID]; !ok {
		return domain.ErrNotFound
	}
	m.templates[tpl.ID] = tpl
	return nil
}

func (m *mockTemplateRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

type mockTemplateService struct {
	resolved   *domain.EmailTemplate
	resolveErr error
}

func (m *mockTemplateService) CreateTemplate(ctx context.Context, tpl *domain.EmailTemplate) error {
	return nil
}

func (m *mockTemplateService) ListMyTemplates(ctx context.Context, callerID string) ([]*domain.EmailTemplate, error) {
	return nil, nil
}

func (m *mockTemplateService) UpdateTemplate(ctx context.Context, tpl *domain.EmailTemplate) (*domain.EmailTemplate, error) {
	return tpl, nil
}

func (m *mockTemplateService) DeleteTemplate(ctx context.Context, templateID, callerID string) error {
	return nil
}

func (m *mockTemplateService) SetDefaultTemplate(ctx context.Context, templateID, callerID string) error {
	return nil
}

func (m *mockTemplateService) ResolveTemplate(ctx context.Context, ownerID, eventID string) (*domain.EmailTemplate, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	if m.resolved != nil {
		return m.resolved, nil
	}
	return &domain.EmailTemplate{
		Subject:      domain.DefaultInviteSubject,
		Heading:      domain.DefaultInviteHeading,
		Message:      domain.DefaultInviteMessage,
		ButtonLabel:  domain.DefaultInviteButtonLabel,
		PrimaryColor: domain.DefaultInvitePrimaryColor,
	}, nil
}

type mockEmailService struct {
	mu      sync.Mutex
	sendErr error
	sent    []*domain.InvitationEmailData
}

func (m *mockEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, data)
	return nil
}
