package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist/internal/domain"
)

var rsvpTestColumns = []string{
	"id", "event_id", "user_id", "token_id", "status", "companions",
	"guest_name", "guest_email", "dietary_preference", "companion_dietary_preference",
	"created_at", "updated_at",
}

func TestRSVPRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokenID := "tok-uuid-1"

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO rsvps`).
		WithArgs("ev-uuid-1", nil, &tokenID, "going", 2, "Ada", "ada@example.com", "veg", "", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rsvp-uuid-1"))

	repo := NewRSVPRepository(db)
	rsvp := &domain.RSVP{
		EventID:    "ev-uuid-1",
		TokenID:    &tokenID,
		Status:     "going",
		Companions: 2,
		GuestName:  "Ada",
		GuestEmail: "ada@example.com",
		Dietary:    "veg",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.Create(ctx, rsvp))
	require.Equal(t, "rsvp-uuid-1", rsvp.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRSVPRepository_Create_UniqueViolation(t *testing.T) {
	ctx := context.Background()
	tokenID := "tok-uuid-1"

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO rsvps`).
		WillReturnError(&pq.Error{Code: "23505"})

	repo := NewRSVPRepository(db)
	err = repo.Create(ctx, &domain.RSVP{EventID: "ev-uuid-1", TokenID: &tokenID, Status: "going"})
	assert.ErrorIs(t, err, domain.ErrAlreadyResponded)
}

func TestRSVPRepository_UpsertByEventAndUser(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)
	userID := "user-uuid-1"

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)INSERT INTO rsvps.+ON CONFLICT \(event_id, user_id\)`).
		WithArgs("ev-uuid-1", &userID, "not_going", 0, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("rsvp-uuid-1", earlier))

	repo := NewRSVPRepository(db)
	rsvp := &domain.RSVP{
		EventID:   "ev-uuid-1",
		UserID:    &userID,
		Status:    "not_going",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.UpsertByEventAndUser(ctx, rsvp))
	require.Equal(t, "rsvp-uuid-1", rsvp.ID)
	require.Equal(t, earlier, rsvp.CreatedAt, "upsert keeps the original creation time")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRSVPRepository_GetByEventAndToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT.+FROM rsvps`).
		WithArgs("ev-uuid-1", "tok-uuid-1").
		WillReturnRows(sqlmock.NewRows(rsvpTestColumns).
			AddRow("rsvp-uuid-1", "ev-uuid-1", nil, "tok-uuid-1", "going", 1, "Ada", "", "vegan", "veg", now, now))

	repo := NewRSVPRepository(db)
	rsvp, err := repo.GetByEventAndToken(ctx, "ev-uuid-1", "tok-uuid-1")
	require.NoError(t, err)
	require.NotNil(t, rsvp.TokenID)
	assert.Equal(t, "tok-uuid-1", *rsvp.TokenID)
	assert.Nil(t, rsvp.UserID)
	assert.Equal(t, "vegan", rsvp.Dietary)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRSVPRepository_GetByEventAndToken_NotFound(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT.+FROM rsvps`).
		WithArgs("ev-uuid-1", "tok-missing").
		WillReturnRows(sqlmock.NewRows(rsvpTestColumns))

	repo := NewRSVPRepository(db)
	_, err = repo.GetByEventAndToken(ctx, "ev-uuid-1", "tok-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRSVPRepository_CountGoingAttendees(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(1 \+ companions\), 0\)`).
		WithArgs("ev-uuid-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(7))

	repo := NewRSVPRepository(db)
	count, err := repo.CountGoingAttendees(ctx, "ev-uuid-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRSVPRepository_ListByEventID_Empty(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT.+FROM rsvps`).
		WithArgs("ev-uuid-1").
		WillReturnRows(sqlmock.NewRows(rsvpTestColumns))

	repo := NewRSVPRepository(db)
	rsvps, err := repo.ListByEventID(ctx, "ev-uuid-1")
	require.NoError(t, err)
	assert.NotNil(t, rsvps)
	assert.Len(t, rsvps, 0)
}
