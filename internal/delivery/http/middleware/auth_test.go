package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist/internal/domain"
)

type fakeVerifier struct {
	userID string
	roles  []string
	err    error
}

func (f *fakeVerifier) Verify(token string) (string, []string, error) {
	return f.userID, f.roles, f.err
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		verifier   *fakeVerifier
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "valid token",
			header:     "Bearer good-token",
			verifier:   &fakeVerifier{userID: "user-1", roles: []string{domain.RoleAdmin}},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "missing header",
			header:     "",
			verifier:   &fakeVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			verifier:   &fakeVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			header:     "Bearer bad-token",
			verifier:   &fakeVerifier{err: errors.New("expired")},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := RequireAuth(tt.verifier)(func(w http.ResponseWriter, r *http.Request) {
				called = true
				userID, ok := UserIDFromContext(r.Context())
				require.True(t, ok)
				assert.Equal(t, "user-1", userID)
				assert.True(t, HasRole(r.Context(), domain.RoleAdmin))
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/events", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantNext, called)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	req = req.WithContext(SetRoles(SetUserID(req.Context(), "user-1"), []string{domain.RoleGuest}))
	rr := httptest.NewRecorder()
	RequireAdmin(next)(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/events", nil)
	req = req.WithContext(SetRoles(SetUserID(req.Context(), "user-1"), []string{domain.RoleAdmin}))
	rr = httptest.NewRecorder()
	RequireAdmin(next)(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
