package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/calendar"
)

// SuggestRequest is a suggestion query as it arrives from a client. Callers
// fill DurationMinutes with availability.DefaultDurationMinutes when the
// client leaves it out.
type SuggestRequest struct {
	ParticipantIDs  []string
	Date            string
	DurationMinutes int
}

type Service struct {
	store  calendar.Store
	logger *slog.Logger
}

func NewService(store calendar.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Suggest returns the earliest start instants, in UTC, at which requesterID
// and the requested participants can all meet. The requester is always
// included. Invalid dates or durations wrap availability.ErrInvalidDate and
// availability.ErrInvalidDuration.
func (s *Service) Suggest(ctx context.Context, requesterID int64, req SuggestRequest) ([]time.Time, error) {
	date, err := availability.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", req.Date, err)
	}
	duration := req.DurationMinutes
	if err := availability.ValidateDuration(duration); err != nil {
		return nil, fmt.Errorf("duration %d: %w", duration, err)
	}

	ids := availability.ParticipantIDs(requesterID, req.ParticipantIDs)
	participants, err := s.store.Participants(ctx, ids, availability.SearchWindow(date, duration))
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	slots := availability.FindSlots(date, duration, participants)
	s.logger.InfoContext(ctx, "suggested meeting times",
		"requester_id", requesterID,
		"date", date.Format(time.DateOnly),
		"duration_minutes", duration,
		"participants", len(participants),
		"slots", len(slots),
	)
	return slots, nil
}
