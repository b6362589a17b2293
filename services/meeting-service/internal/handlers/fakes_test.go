package handlers

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/scheduling"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/sessions"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/storage"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]model.User{}}
}

func (m *memUsers) Create(_ context.Context, u model.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return 0, storage.ErrEmailTaken
		}
		if existing.Username == u.Username {
			return 0, storage.ErrUsernameTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	if u.Hours == (availability.WorkingHours{}) {
		u.Hours = availability.DefaultWorkingHours()
	}
	m.byID[u.ID] = u
	return u.ID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, pgx.ErrNoRows
}

func (m *memUsers) GetByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) ListOthers(_ context.Context, exclude int64) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for id, u := range m.byID {
		if id != exclude {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.byID {
		if id != u.ID && existing.Username == u.Username {
			return model.User{}, storage.ErrUsernameTaken
		}
	}
	m.byID[u.ID] = u
	return u, nil
}

type memRefresh struct {
	mu     sync.Mutex
	tokens map[string]sessions.RefreshToken
	nextID int
}

func newMemRefresh() *memRefresh {
	return &memRefresh{tokens: map[string]sessions.RefreshToken{}}
}

func (m *memRefresh) Create(_ context.Context, userID int64, raw string, expiresAt time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := strconv.Itoa(m.nextID)
	hash := sessions.HashToken(raw)
	m.tokens[hash] = sessions.RefreshToken{ID: id, UserID: userID, Hash: hash, ExpiresAt: expiresAt}
	return id, nil
}

func (m *memRefresh) GetByHash(_ context.Context, hash string) (sessions.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[hash]
	if !ok {
		return sessions.RefreshToken{}, sessions.ErrInvalidRefreshToken
	}
	return t, nil
}

func (m *memRefresh) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, t := range m.tokens {
		if t.ID == id && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			m.tokens[hash] = t
		}
	}
	return nil
}

// memMeetings doubles as the meeting service and the calendar store so
// suggestions see the meetings created through the API.
type memMeetings struct {
	mu       sync.Mutex
	users    *memUsers
	nextID   int64
	meetings map[int64]model.Meeting
}

func newMemMeetings(users *memUsers) *memMeetings {
	return &memMeetings{users: users, meetings: map[int64]model.Meeting{}}
}

func (m *memMeetings) Create(_ context.Context, ownerID int64, req scheduling.NewMeeting) (model.Meeting, error) {
	meeting, err := req.Validate(ownerID)
	if err != nil {
		return model.Meeting{}, err
	}
	var known []int64
	for _, id := range meeting.ParticipantIDs {
		if _, err := m.users.GetByID(context.Background(), id); err == nil {
			known = append(known, id)
		}
	}
	meeting.ParticipantIDs = known

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	meeting.ID = m.nextID
	m.meetings[meeting.ID] = meeting
	return meeting, nil
}

func (m *memMeetings) Delete(_ context.Context, requesterID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting, ok := m.meetings[id]
	if !ok {
		return scheduling.ErrMeetingNotFound
	}
	if meeting.OwnerID != requesterID {
		return scheduling.ErrNotOwner
	}
	delete(m.meetings, id)
	return nil
}

func (m *memMeetings) ListForUser(_ context.Context, userID int64) ([]model.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Meeting
	for _, meeting := range m.meetings {
		for _, p := range meeting.ParticipantIDs {
			if p == userID {
				out = append(out, meeting)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *memMeetings) ListUpcoming(ctx context.Context, userID int64) ([]model.Meeting, error) {
	all, _ := m.ListForUser(ctx, userID)
	var out []model.Meeting
	for _, meeting := range all {
		if meeting.End.After(time.Now()) && len(out) < 5 {
			out = append(out, meeting)
		}
	}
	return out, nil
}

func (m *memMeetings) Participants(ctx context.Context, ids []int64, window availability.Interval) ([]availability.Participant, error) {
	var out []availability.Participant
	for _, id := range ids {
		u, err := m.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		meetings, _ := m.ListForUser(ctx, id)
		p := availability.Participant{ID: id, Timezone: u.Timezone, Hours: u.Hours}
		for _, meeting := range meetings {
			busy := availability.Interval{Start: meeting.Start, End: meeting.End}
			if busy.Overlaps(window.Start, window.End) {
				p.Busy = append(p.Busy, busy)
			}
		}
		out = append(out, p)
	}
	return out, nil
}
