package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetsync/libs/httpx"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/ics"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/model"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/scheduling"
)

type MeetingService interface {
	Create(ctx context.Context, ownerID int64, req scheduling.NewMeeting) (model.Meeting, error)
	Delete(ctx context.Context, requesterID, id int64) error
	ListForUser(ctx context.Context, userID int64) ([]model.Meeting, error)
	ListUpcoming(ctx context.Context, userID int64) ([]model.Meeting, error)
}

type MeetingHandler struct {
	meetings  MeetingService
	icsDomain string
	logger    *slog.Logger
}

func NewMeetingHandler(meetings MeetingService, icsDomain string, logger *slog.Logger) *MeetingHandler {
	if icsDomain == "" {
		icsDomain = "meetsync.local"
	}
	return &MeetingHandler{meetings: meetings, icsDomain: icsDomain, logger: logger}
}

type createMeetingRequest struct {
	Title          string `json:"title"`
	Start          string `json:"start"`
	End            string `json:"end"`
	ParticipantIDs idList `json:"participant_ids"`
}

// Meetings serves GET (list) and POST (create) on /api/meetings.
func (h *MeetingHandler) Meetings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MeetingHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	meetings, err := h.meetings.ListForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to list meetings", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMeetingResponses(meetings))
}

func (h *MeetingHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req createMeetingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := scheduling.NewMeeting{Title: req.Title, ParticipantIDs: req.ParticipantIDs}
	if req.Start != "" || req.End != "" {
		var startOK, endOK bool
		in.Start, startOK = parseTimestamp(req.Start)
		in.End, endOK = parseTimestamp(req.End)
		if !startOK || !endOK {
			http.Error(w, "start and end must be ISO 8601 timestamps", http.StatusBadRequest)
			return
		}
	}

	m, err := h.meetings.Create(r.Context(), userID, in)
	switch {
	case errors.Is(err, scheduling.ErrMissingFields):
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	case errors.Is(err, scheduling.ErrTitleTooLong), errors.Is(err, scheduling.ErrEndBeforeStart):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "create meeting failed", "owner_id", userID, "err", err)
		http.Error(w, "failed to create meeting", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(r.Context(), "meeting created", "meeting_id", m.ID, "owner_id", userID, "participants", len(m.ParticipantIDs))
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Meeting created successfully",
		"id":      m.ID,
	})
}

func (h *MeetingHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	meetings, err := h.meetings.ListUpcoming(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to list meetings", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMeetingResponses(meetings))
}

// MeetingByID serves DELETE /api/meetings/{id}.
func (h *MeetingHandler) MeetingByID(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := parseID(strings.TrimPrefix(r.URL.Path, "/api/meetings/"))
	if !ok {
		http.Error(w, "meeting not found", http.StatusNotFound)
		return
	}

	err := h.meetings.Delete(r.Context(), userID, id)
	switch {
	case errors.Is(err, scheduling.ErrMeetingNotFound):
		http.Error(w, "meeting not found", http.StatusNotFound)
		return
	case errors.Is(err, scheduling.ErrNotOwner):
		http.Error(w, "unauthorized", http.StatusForbidden)
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "delete meeting failed", "meeting_id", id, "err", err)
		http.Error(w, "failed to delete meeting", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(r.Context(), "meeting deleted", "meeting_id", id, "owner_id", userID)
	httpx.WriteMessage(w, http.StatusOK, "Meeting deleted successfully")
}

// Calendar serves the caller's meetings as text/calendar.
func (h *MeetingHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	meetings, err := h.meetings.ListForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to list meetings", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meetings.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics.Export(meetings, h.icsDomain, time.Now())))
}
