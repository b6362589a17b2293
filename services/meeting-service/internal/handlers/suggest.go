package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetsync/libs/httpx"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/calendar"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/scheduling"
)

type Suggester interface {
	Suggest(ctx context.Context, requesterID int64, req scheduling.SuggestRequest) ([]time.Time, error)
}

type SuggestHandler struct {
	suggester Suggester
	logger    *slog.Logger
}

func NewSuggestHandler(suggester Suggester, logger *slog.Logger) *SuggestHandler {
	return &SuggestHandler{suggester: suggester, logger: logger}
}

type suggestRequest struct {
	ParticipantIDs idList          `json:"participant_ids"`
	Date           string          `json:"date"`
	Duration       json.RawMessage `json:"duration"`
}

// SuggestTimes answers with a JSON array of up to five UTC start timestamps.
func (h *SuggestHandler) SuggestTimes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req suggestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	duration, err := parseDuration(req.Duration)
	if err != nil {
		http.Error(w, "duration must be a whole number of minutes", http.StatusBadRequest)
		return
	}

	slots, err := h.suggester.Suggest(r.Context(), userID, scheduling.SuggestRequest{
		ParticipantIDs:  req.ParticipantIDs,
		Date:            req.Date,
		DurationMinutes: duration,
	})
	switch {
	case errors.Is(err, availability.ErrInvalidDate):
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	case errors.Is(err, availability.ErrInvalidDuration):
		http.Error(w, "duration must be positive", http.StatusBadRequest)
		return
	case errors.Is(err, calendar.ErrStoreUnavailable):
		http.Error(w, "calendar temporarily unavailable", http.StatusServiceUnavailable)
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "suggest times failed", "requester_id", userID, "err", err)
		http.Error(w, "failed to suggest times", http.StatusInternalServerError)
		return
	}

	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, formatTimestamp(s))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// parseDuration accepts a whole JSON number (60 or 60.0) or a numeric
// string; absent or null means the default duration.
func parseDuration(raw json.RawMessage) (int, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return availability.DefaultDurationMinutes, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return 0, fmt.Errorf("not a whole number: %v", n)
	}
	return int(n), nil
}
