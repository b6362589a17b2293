package model

import "time"

// Meeting is stored with UTC start and end; the owner is always a participant.
type Meeting struct {
	ID             int64
	Title          string
	Start          time.Time
	End            time.Time
	OwnerID        int64
	ParticipantIDs []int64
	CreatedAt      time.Time
}
