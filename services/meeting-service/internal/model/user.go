package model

import (
	"time"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Timezone     string
	Hours        availability.WorkingHours
	CreatedAt    time.Time
}
