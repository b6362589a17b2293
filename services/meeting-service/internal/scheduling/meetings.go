package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/meetsync/libs/db"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/outbox"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/storage"
)

const (
	maxTitleLength = 120
	upcomingLimit  = 5
)

var (
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrNotOwner        = errors.New("only the owner can delete a meeting")
	ErrMissingFields   = errors.New("title, start and end are required")
	ErrTitleTooLong    = errors.New("title is too long")
	ErrEndBeforeStart  = errors.New("end must be after start")
)

// NewMeeting is a meeting as requested by its owner.
type NewMeeting struct {
	Title          string
	Start          time.Time
	End            time.Time
	ParticipantIDs []string
}

// Validate checks the fields and returns the meeting to store for ownerID.
// The owner always attends; malformed and duplicate participant ids are dropped.
func (n NewMeeting) Validate(ownerID int64) (model.Meeting, error) {
	title := strings.TrimSpace(n.Title)
	if title == "" || n.Start.IsZero() || n.End.IsZero() {
		return model.Meeting{}, ErrMissingFields
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return model.Meeting{}, ErrTitleTooLong
	}
	if !n.End.After(n.Start) {
		return model.Meeting{}, ErrEndBeforeStart
	}
	return model.Meeting{
		Title:          title,
		Start:          n.Start.UTC(),
		End:            n.End.UTC(),
		OwnerID:        ownerID,
		ParticipantIDs: availability.ParticipantIDs(ownerID, n.ParticipantIDs),
	}, nil
}

type MeetingStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, m *model.Meeting) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.Meeting, error)
	DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error
	ListForUser(ctx context.Context, userID int64) ([]model.Meeting, error)
	ListUpcoming(ctx context.Context, userID int64, now time.Time, limit int) ([]model.Meeting, error)
}

// Meetings writes meetings and their outbox events in one transaction.
type Meetings struct {
	pool   *db.Pool
	repo   MeetingStore
	outbox *outbox.Repository
	now    func() time.Time
}

func NewMeetings(pool *db.Pool, repo MeetingStore, outboxRepo *outbox.Repository) *Meetings {
	return &Meetings{pool: pool, repo: repo, outbox: outboxRepo, now: time.Now}
}

func (s *Meetings) Create(ctx context.Context, ownerID int64, req NewMeeting) (model.Meeting, error) {
	m, err := req.Validate(ownerID)
	if err != nil {
		return model.Meeting{}, err
	}
	err = s.pool.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.CreateTx(ctx, tx, &m); err != nil {
			return err
		}
		evt, err := outbox.MeetingCreated(m, s.now())
		if err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, evt)
	})
	if err != nil {
		return model.Meeting{}, err
	}
	return m, nil
}

// Delete removes meeting id when requesterID owns it.
func (s *Meetings) Delete(ctx context.Context, requesterID, id int64) error {
	return s.pool.InTx(ctx, func(tx pgx.Tx) error {
		m, err := s.repo.GetForUpdate(ctx, tx, id)
		if storage.IsNotFound(err) {
			return ErrMeetingNotFound
		}
		if err != nil {
			return err
		}
		if m.OwnerID != requesterID {
			return ErrNotOwner
		}
		if err := s.repo.DeleteTx(ctx, tx, id); err != nil {
			return err
		}
		evt, err := outbox.MeetingDeleted(m, s.now())
		if err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, evt)
	})
}

func (s *Meetings) ListForUser(ctx context.Context, userID int64) ([]model.Meeting, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Meetings) ListUpcoming(ctx context.Context, userID int64) ([]model.Meeting, error) {
	return s.repo.ListUpcoming(ctx, userID, s.now(), upcomingLimit)
}
