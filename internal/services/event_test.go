package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist/internal/domain"
)

func TestCreateEvent(t *testing.T) {
	repo := newMockEventRepository()
	svc := NewEventService(repo, testTimeout)

	event := &domain.Event{Title: "Launch party", Capacity: 50, OwnerID: "owner-1"}
	require.NoError(t, svc.CreateEvent(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestCreateEvent_Validation(t *testing.T) {
	svc := NewEventService(newMockEventRepository(), testTimeout)

	err := svc.CreateEvent(context.Background(), &domain.Event{Title: "", Capacity: 10, OwnerID: "owner-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.CreateEvent(context.Background(), &domain.Event{Title: "No seats", Capacity: 0, OwnerID: "owner-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetEvent_OwnershipHidesEvent(t *testing.T) {
	repo := newMockEventRepository(testEvent(10))
	svc := NewEventService(repo, testTimeout)

	got, err := svc.GetEvent(context.Background(), "ev-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "ev-1", got.ID)

	_, err = svc.GetEvent(context.Background(), "ev-1", "someone-else")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateEvent_CapacityCanDropBelowAttendance(t *testing.T) {
	repo := newMockEventRepository(testEvent(50))
	svc := NewEventService(repo, testTimeout)

	// Lowering capacity is allowed even if responses already exceed it; only
	// future admissions are affected.
	two := 2
	updated, err := svc.UpdateEvent(context.Background(), "ev-1", "owner-1", domain.EventUpdate{Capacity: &two})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Capacity)

	zero := 0
	_, err = svc.UpdateEvent(context.Background(), "ev-1", "owner-1", domain.EventUpdate{Capacity: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteEvent(t *testing.T) {
	repo := newMockEventRepository(testEvent(10))
	svc := NewEventService(repo, testTimeout)

	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), "ev-1", "intruder"), domain.ErrNotFound)
	require.NoError(t, svc.DeleteEvent(context.Background(), "ev-1", "owner-1"))
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), "ev-1", "owner-1"), domain.ErrNotFound)
}
