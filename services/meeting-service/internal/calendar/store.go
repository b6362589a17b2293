package calendar

import (
	"context"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
)

// Store loads what the slot search needs to know about a set of users.
type Store interface {
	// Participants returns the known users among ids, in the order of ids,
	// with the busy intervals that overlap window. Unknown ids are dropped.
	Participants(ctx context.Context, ids []int64, window availability.Interval) ([]availability.Participant, error)
}

type UserLister interface {
	ListByIDs(ctx context.Context, ids []int64) ([]model.User, error)
}

type BusyLister interface {
	BusyIntervals(ctx context.Context, userIDs []int64, window availability.Interval) (map[int64][]availability.Interval, error)
}

// PostgresStore reads participants from the users and meetings tables.
type PostgresStore struct {
	users    UserLister
	meetings BusyLister
}

func NewPostgresStore(users UserLister, meetings BusyLister) *PostgresStore {
	return &PostgresStore{users: users, meetings: meetings}
}

func (s *PostgresStore) Participants(ctx context.Context, ids []int64, window availability.Interval) ([]availability.Participant, error) {
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	byID := make(map[int64]model.User, len(users))
	found := make([]int64, 0, len(users))
	for _, u := range users {
		byID[u.ID] = u
		found = append(found, u.ID)
	}

	busy, err := s.meetings.BusyIntervals(ctx, found, window)
	if err != nil {
		return nil, err
	}

	participants := make([]availability.Participant, 0, len(users))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			continue
		}
		delete(byID, id)
		participants = append(participants, availability.Participant{
			ID:       u.ID,
			Timezone: u.Timezone,
			Hours:    u.Hours,
			Busy:     busy[u.ID],
		})
	}
	return participants, nil
}
