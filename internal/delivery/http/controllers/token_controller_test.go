package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist/internal/delivery/http/middleware"
	"guestlist/internal/domain"
)

type fakeInviteService struct {
	result    *domain.InviteTokenWithEmailResult
	createErr error
	invitees  []*domain.Invitee
	total     int
	listErr   error

	lastEmail  string
	lastSearch string
	lastStatus string
	lastParams domain.PaginationParams
}

func (f *fakeInviteService) CreateInviteToken(ctx context.Context, eventID, callerID, email, name string) (*domain.InviteTokenWithEmailResult, error) {
	f.lastEmail = email
	return f.result, f.createErr
}

func (f *fakeInviteService) ListInvitees(ctx context.Context, eventID, callerID string, search, statusFilter string, params domain.PaginationParams) ([]*domain.Invitee, int, error) {
	f.lastSearch = search
	f.lastStatus = statusFilter
	f.lastParams = params
	return f.invitees, f.total, f.listErr
}

func TestTokenController_CreateToken(t *testing.T) {
	fake := &fakeInviteService{
		result: &domain.InviteTokenWithEmailResult{
			Token:     &domain.InviteToken{ID: "tok-1", EventID: testEventID, Email: "guest@example.com"},
			EmailSent: false,
		},
	}
	ctrl := NewTokenController(discardLogger(), fake)

	req := httptest.NewRequest(http.MethodPost, "/tokens/"+testEventID, bytes.NewBufferString(`{"email":"Guest@Example.com","name":"Ada"}`))
	req.SetPathValue("eventID", testEventID)
	req = req.WithContext(middleware.SetUserID(req.Context(), "owner-1"))
	rr := httptest.NewRecorder()

	ctrl.CreateToken(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "guest@example.com", fake.lastEmail, "email must be normalized before the service call")

	env := decodeEnvelope(t, rr)
	require.Nil(t, env.Error)
	var result domain.InviteTokenWithEmailResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.EmailSent, "failed dispatch surfaces as email_sent=false, not an error")
}

func TestTokenController_CreateToken_BadEmail(t *testing.T) {
	ctrl := NewTokenController(discardLogger(), &fakeInviteService{})

	req := httptest.NewRequest(http.MethodPost, "/tokens/"+testEventID, bytes.NewBufferString(`{"email":"nope"}`))
	req.SetPathValue("eventID", testEventID)
	req = req.WithContext(middleware.SetUserID(req.Context(), "owner-1"))
	rr := httptest.NewRecorder()

	ctrl.CreateToken(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTokenController_ListInvitees(t *testing.T) {
	fake := &fakeInviteService{
		invitees: []*domain.Invitee{
			{Token: &domain.InviteToken{ID: "tok-1", Email: "a@example.com"}, Status: "going", Companions: 1},
			{Token: &domain.InviteToken{ID: "tok-2", Email: "b@example.com"}, Status: "pending"},
		},
		total: 12,
	}
	ctrl := NewTokenController(discardLogger(), fake)

	req := httptest.NewRequest(http.MethodGet, "/tokens/"+testEventID+"?page=2&page_size=2&search=example&status=Pending", nil)
	req.SetPathValue("eventID", testEventID)
	req = req.WithContext(middleware.SetUserID(req.Context(), "owner-1"))
	rr := httptest.NewRecorder()

	ctrl.ListInvitees(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "example", fake.lastSearch)
	assert.Equal(t, "pending", fake.lastStatus)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 2}, fake.lastParams)

	env := decodeEnvelope(t, rr)
	var payload struct {
		Invitees   []*domain.Invitee `json:"invitees"`
		Pagination struct {
			Page       int `json:"page"`
			PageSize   int `json:"page_size"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Len(t, payload.Invitees, 2)
	assert.Equal(t, 12, payload.Pagination.Total)
	assert.Equal(t, 6, payload.Pagination.TotalPages)
}

func TestTokenController_ListInvitees_NotOwned(t *testing.T) {
	ctrl := NewTokenController(discardLogger(), &fakeInviteService{listErr: domain.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/tokens/"+testEventID, nil)
	req.SetPathValue("eventID", testEventID)
	req = req.WithContext(middleware.SetUserID(req.Context(), "intruder"))
	rr := httptest.NewRecorder()

	ctrl.ListInvitees(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}
