package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/meetsync/libs/db"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
)

type MeetingRepository struct {
	pool *db.Pool
}

func NewMeetingRepository(pool *db.Pool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

// attendance lists every (meeting, user) pair, counting owners as attendees.
const attendance = `
	SELECT meeting_id, user_id FROM meeting_participants
	UNION
	SELECT id, owner_id FROM meetings`

const meetingColumns = `m.id, m.title, m.start_time, m.end_time, m.owner_id, m.created_at`

// CreateTx inserts m with its owner and those participant ids that belong to
// a user; unknown ids are skipped. m.ID and m.ParticipantIDs are filled in.
func (r *MeetingRepository) CreateTx(ctx context.Context, tx pgx.Tx, m *model.Meeting) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO meetings (title, start_time, end_time, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, m.Title, m.Start.UTC(), m.End.UTC(), m.OwnerID).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return err
	}

	ids := append([]int64{m.OwnerID}, m.ParticipantIDs...)
	rows, err := tx.Query(ctx, `
		INSERT INTO meeting_participants (meeting_id, user_id)
		SELECT $1, u.id FROM users u WHERE u.id = ANY($2)
		ON CONFLICT DO NOTHING
		RETURNING user_id
	`, m.ID, ids)
	if err != nil {
		return err
	}
	added, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return err
	}
	m.ParticipantIDs = added
	return nil
}

func (r *MeetingRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.Meeting, error) {
	var m model.Meeting
	err := tx.QueryRow(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings m
		WHERE m.id = $1
		FOR UPDATE
	`, id).Scan(&m.ID, &m.Title, &m.Start, &m.End, &m.OwnerID, &m.CreatedAt)
	if err != nil {
		return model.Meeting{}, err
	}
	return m, nil
}

func (r *MeetingRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	return err
}

// ListForUser returns meetings userID owns or attends, earliest first.
func (r *MeetingRepository) ListForUser(ctx context.Context, userID int64) ([]model.Meeting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings m
		WHERE m.id IN (SELECT a.meeting_id FROM (`+attendance+`) a WHERE a.user_id = $1)
		ORDER BY m.start_time ASC, m.id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectMeetings(rows)
}

// ListUpcoming returns up to limit meetings of userID that end after now.
func (r *MeetingRepository) ListUpcoming(ctx context.Context, userID int64, now time.Time, limit int) ([]model.Meeting, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings m
		WHERE m.id IN (SELECT a.meeting_id FROM (`+attendance+`) a WHERE a.user_id = $1)
			AND m.end_time > $2
		ORDER BY m.start_time ASC, m.id ASC
		LIMIT $3
	`, userID, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	return collectMeetings(rows)
}

// BusyIntervals returns, per user, the meetings they own or attend that
// overlap window, sorted by start.
func (r *MeetingRepository) BusyIntervals(ctx context.Context, userIDs []int64, window availability.Interval) (map[int64][]availability.Interval, error) {
	busy := make(map[int64][]availability.Interval, len(userIDs))
	if len(userIDs) == 0 {
		return busy, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT a.user_id, m.start_time, m.end_time
		FROM meetings m
		JOIN (`+attendance+`) a ON a.meeting_id = m.id
		WHERE a.user_id = ANY($1)
			AND m.start_time < $3
			AND m.end_time > $2
		ORDER BY a.user_id, m.start_time
	`, userIDs, window.Start.UTC(), window.End.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			in     availability.Interval
		)
		if err := rows.Scan(&userID, &in.Start, &in.End); err != nil {
			return nil, err
		}
		in.Start, in.End = in.Start.UTC(), in.End.UTC()
		busy[userID] = append(busy[userID], in)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return busy, nil
}

func collectMeetings(rows pgx.Rows) ([]model.Meeting, error) {
	defer rows.Close()
	var meetings []model.Meeting
	for rows.Next() {
		var m model.Meeting
		if err := rows.Scan(&m.ID, &m.Title, &m.Start, &m.End, &m.OwnerID, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Start, m.End = m.Start.UTC(), m.End.UTC()
		meetings = append(meetings, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return meetings, nil
}
