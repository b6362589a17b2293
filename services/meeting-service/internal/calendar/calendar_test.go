package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
)

type fakeUsers struct {
	users []model.User
	err   error
}

func (f fakeUsers) ListByIDs(_ context.Context, ids []int64) ([]model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []model.User
	for _, u := range f.users {
		if want[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeBusy struct {
	busy      map[int64][]availability.Interval
	gotIDs    []int64
	gotWindow availability.Interval
}

func (f *fakeBusy) BusyIntervals(_ context.Context, ids []int64, window availability.Interval) (map[int64][]availability.Interval, error) {
	f.gotIDs, f.gotWindow = ids, window
	return f.busy, nil
}

var day = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func TestPostgresStoreParticipants(t *testing.T) {
	hours := availability.DefaultWorkingHours()
	users := fakeUsers{users: []model.User{
		{ID: 1, Timezone: "UTC", Hours: hours},
		{ID: 2, Timezone: "America/New_York", Hours: hours},
	}}
	meeting := availability.Interval{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}
	busy := &fakeBusy{busy: map[int64][]availability.Interval{2: {meeting}}}
	window := availability.SearchWindow(day, 60)

	got, err := NewPostgresStore(users, busy).Participants(context.Background(), []int64{2, 99, 1}, window)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, "America/New_York", got[0].Timezone)
	assert.Equal(t, []availability.Interval{meeting}, got[0].Busy)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Empty(t, got[1].Busy)
	assert.ElementsMatch(t, []int64{1, 2}, busy.gotIDs)
	assert.Equal(t, window, busy.gotWindow)
}

func TestPostgresStoreNoKnownUsers(t *testing.T) {
	busy := &fakeBusy{}
	got, err := NewPostgresStore(fakeUsers{}, busy).Participants(context.Background(), []int64{5}, availability.SearchWindow(day, 30))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Nil(t, busy.gotIDs)
}

type flakyStore struct {
	calls int
	err   error
}

func (f *flakyStore) Participants(context.Context, []int64, availability.Interval) ([]availability.Participant, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []availability.Participant{{ID: 1}}, nil
}

func TestBreakerStoreOpensAfterFailures(t *testing.T) {
	inner := &flakyStore{err: errors.New("connection refused")}
	store := NewBreakerStore(inner, BreakerConfig{FailureThreshold: 2, Timeout: time.Minute}, nil)
	window := availability.SearchWindow(day, 30)

	for i := 0; i < 2; i++ {
		_, err := store.Participants(context.Background(), []int64{1}, window)
		assert.EqualError(t, err, "connection refused")
	}
	assert.Equal(t, "open", store.State())

	_, err := store.Participants(context.Background(), []int64{1}, window)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerStoreIgnoresCancellation(t *testing.T) {
	inner := &flakyStore{err: context.Canceled}
	store := NewBreakerStore(inner, BreakerConfig{FailureThreshold: 1, Timeout: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		_, err := store.Participants(context.Background(), nil, availability.Interval{})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", store.State())

	inner.err = nil
	got, err := store.Participants(context.Background(), nil, availability.Interval{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
