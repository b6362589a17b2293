package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
)

func TestMapUserConflict(t *testing.T) {
	email := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	username := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	other := &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}
	check := &pgconn.PgError{Code: "23514", ConstraintName: "users_working_hours_check"}

	assert.ErrorIs(t, mapUserConflict(fmt.Errorf("insert: %w", email)), ErrEmailTaken)
	assert.ErrorIs(t, mapUserConflict(username), ErrUsernameTaken)
	assert.Same(t, other, mapUserConflict(other))
	assert.Same(t, check, mapUserConflict(check))
	assert.True(t, IsUniqueViolation(other))
	assert.False(t, IsUniqueViolation(check))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("get user: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestPgTimeConversion(t *testing.T) {
	tod := availability.TimeOfDay(17*time.Hour + 45*time.Minute)
	pg := toPgTime(tod)
	assert.True(t, pg.Valid)
	assert.Equal(t, int64(63900000000), pg.Microseconds)
	assert.Equal(t, tod, fromPgTime(pg))
	pg.Valid = false
	assert.Equal(t, availability.TimeOfDay(0), fromPgTime(pg))
}
