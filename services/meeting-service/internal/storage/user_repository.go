package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/md-rashed-zaman/meetsync/libs/db"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
)

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, timezone, working_hours_start, working_hours_end, created_at`

// Create inserts u and returns its id. Duplicate emails and usernames come
// back as ErrEmailTaken and ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, u model.User) (int64, error) {
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	if u.Hours == (availability.WorkingHours{}) {
		u.Hours = availability.DefaultWorkingHours()
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, timezone, working_hours_start, working_hours_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, u.Username, u.Email, u.PasswordHash, u.Timezone, toPgTime(u.Hours.Start), toPgTime(u.Hours.End)).Scan(&id)
	if err != nil {
		return 0, mapUserConflict(err)
	}
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// ListByIDs returns the users that exist among ids, ordered by id.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// ListOthers returns every user except the one with id exclude.
func (r *UserRepository) ListOthers(ctx context.Context, exclude int64) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY username`, exclude)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// UpdateProfile overwrites the editable profile fields of u.
func (r *UserRepository) UpdateProfile(ctx context.Context, u model.User) (model.User, error) {
	updated, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET username = $2,
			timezone = $3,
			working_hours_start = $4,
			working_hours_end = $5
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Username, u.Timezone, toPgTime(u.Hours.Start), toPgTime(u.Hours.End)))
	if err != nil {
		return model.User{}, mapUserConflict(err)
	}
	return updated, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		u          model.User
		start, end pgtype.Time
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Timezone, &start, &end, &u.CreatedAt); err != nil {
		return model.User{}, err
	}
	u.Hours = availability.WorkingHours{Start: fromPgTime(start), End: fromPgTime(end)}
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

func toPgTime(t availability.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: time.Duration(t).Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) availability.TimeOfDay {
	if !t.Valid {
		return 0
	}
	return availability.TimeOfDay(time.Duration(t.Microseconds) * time.Microsecond)
}
