package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetsync/libs/httpx"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
)

func formatTimestamp(t time.Time) string {
	return availability.FormatSlot(t)
}

type userResponse struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Timezone          string `json:"timezone"`
	WorkingHoursStart string `json:"working_hours_start"`
	WorkingHoursEnd   string `json:"working_hours_end"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Timezone:          u.Timezone,
		WorkingHoursStart: u.Hours.Start.String(),
		WorkingHoursEnd:   u.Hours.End.String(),
	}
}

type meetingResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func toMeetingResponses(meetings []model.Meeting) []meetingResponse {
	out := make([]meetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, meetingResponse{
			ID:    m.ID,
			Title: m.Title,
			Start: formatTimestamp(m.Start),
			End:   formatTimestamp(m.End),
		})
	}
	return out
}

// idList accepts a JSON array of numbers or numeric strings. Elements that
// are neither are kept verbatim so later parsing drops them.
type idList []string

func (l *idList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(r))
	}
	*l = out
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// callerID returns the authenticated user id placed on the context by httpx.RequireAuth.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return p.UserID, true
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	return id, err == nil && id > 0
}

// parseTimestamp accepts RFC 3339, or a bare local timestamp taken as UTC.
func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
