package models

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(title string, capacity int) *Event {
	return &Event{
		Title:       title,
		Description: "d",
		Date:        time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
		Location:    "Hall A",
		Capacity:    capacity,
	}
}

func TestMemoryRepo_CreateGetAll(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()

	a, b := newEvent("A", 2), newEvent("B", 3)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotNil(t, a.Registrations)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Title)
	assert.Equal(t, "B", all[1].Title)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Capacity)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()
	e := newEvent("A", 1)
	require.NoError(t, repo.Create(ctx, e))

	deleted, err := repo.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", deleted.Title)

	_, err = repo.Delete(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryRepo_Save(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()
	e := newEvent("A", 1)
	require.NoError(t, repo.Create(ctx, e))

	e.Location = "Hall B"
	require.NoError(t, repo.Save(ctx, e))
	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hall B", got.Location)

	ghost := newEvent("ghost", 1)
	ghost.ID = "nope"
	assert.ErrorIs(t, repo.Save(ctx, ghost), ErrNotFound)
}

func TestMemoryRepo_AppendRegistrationRespectsCapacity(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()
	e := newEvent("A", 2)
	require.NoError(t, repo.Create(ctx, e))

	for i := 0; i < 2; i++ {
		got, err := repo.AppendRegistration(ctx, e.ID, Registration{Name: fmt.Sprint(i), PhoneNumber: "1"})
		require.NoError(t, err)
		assert.Len(t, got.Registrations, i+1)
	}

	_, err := repo.AppendRegistration(ctx, e.ID, Registration{Name: "late", PhoneNumber: "1"})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = repo.AppendRegistration(ctx, "missing", Registration{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, got.Registrations, 2)
	assert.Equal(t, "0", got.Registrations[0].Name)
}

func TestMemoryRepo_ReturnedEventsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()
	e := newEvent("A", 5)
	require.NoError(t, repo.Create(ctx, e))
	_, err := repo.AppendRegistration(ctx, e.ID, Registration{Name: "x", PhoneNumber: "1"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	got.Registrations[0].Name = "mutated"

	again, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", again.Registrations[0].Name)
}

func TestMemoryRepo_ConcurrentRegistrationsNeverOverfill(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()
	e := newEvent("popular", 10)
	require.NoError(t, repo.Create(ctx, e))

	const attempts = 100
	var (
		wg   sync.WaitGroup
		ok   atomic.Int32
		full atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AppendRegistration(ctx, e.ID, Registration{Name: fmt.Sprintf("u%d", i), PhoneNumber: "1"})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrCapacityExceeded):
				full.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok.Load())
	assert.Equal(t, int32(attempts-10), full.Load())

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, got.Registrations, 10)
}

func TestEvent_SpotsLeft(t *testing.T) {
	e := Event{Capacity: 2, Registrations: make([]Registration, 3)}
	assert.Equal(t, 0, e.SpotsLeft())
	assert.True(t, e.IsFull())

	e.Registrations = e.Registrations[:1]
	assert.Equal(t, 1, e.SpotsLeft())
	assert.False(t, e.IsFull())
}

func TestNewAdminEventView(t *testing.T) {
	attend := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	regAt := time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC)
	e := Event{
		ID:          "e1",
		Title:       "Meetup",
		Description: "not projected",
		Date:        attend,
		Location:    "not projected",
		Capacity:    9,
		Image:       "/event-images/x.png",
		Registrations: []Registration{
			{Name: "Ann", PhoneNumber: "111", AttendDate: &attend, RegistrationDate: regAt},
			{Name: "Bob", PhoneNumber: "222", RegistrationDate: regAt},
		},
	}

	v := NewAdminEventView(e)
	assert.Equal(t, "e1", v.ID)
	assert.Equal(t, "Meetup", v.EventTitle)
	assert.Equal(t, attend, v.EventDate)
	assert.Equal(t, "/event-images/x.png", v.Image)
	require.Len(t, v.Attendees, 2)
	assert.Equal(t, Attendee{Name: "Ann", PhoneNumber: "111", AttendDate: &attend, RegistrationDate: regAt}, v.Attendees[0])
	assert.Nil(t, v.Attendees[1].AttendDate)

	empty := NewAdminEventView(Event{ID: "e2"})
	assert.NotNil(t, empty.Attendees)
	assert.Empty(t, empty.Attendees)
}
