package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/meetsync/libs/httpx"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/availability"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/storage"
)

type ProfileHandler struct {
	users  Users
	logger *slog.Logger
}

func NewProfileHandler(users Users, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, logger: logger}
}

// profileUpdate fields are optional; nil leaves the stored value alone.
type profileUpdate struct {
	Username          *string `json:"username"`
	Timezone          *string `json:"timezone"`
	WorkingHoursStart *string `json:"working_hours_start"`
	WorkingHoursEnd   *string `json:"working_hours_end"`
}

func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getProfile(w, r)
	case http.MethodPut:
		h.updateProfile(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProfileHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *ProfileHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req profileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" || len(name) > 80 {
			http.Error(w, "invalid username", http.StatusBadRequest)
			return
		}
		user.Username = name
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if !availability.ValidTimezone(tz) {
			http.Error(w, "unknown timezone", http.StatusBadRequest)
			return
		}
		user.Timezone = tz
	}
	if req.WorkingHoursStart != nil {
		if user.Hours.Start, err = availability.ParseTimeOfDay(*req.WorkingHoursStart); err != nil {
			http.Error(w, "working_hours_start must be HH:MM", http.StatusBadRequest)
			return
		}
	}
	if req.WorkingHoursEnd != nil {
		if user.Hours.End, err = availability.ParseTimeOfDay(*req.WorkingHoursEnd); err != nil {
			http.Error(w, "working_hours_end must be HH:MM", http.StatusBadRequest)
			return
		}
	}
	if err := user.Hours.Validate(); err != nil {
		http.Error(w, "working hours start must be before end", http.StatusBadRequest)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user)
	switch {
	case errors.Is(err, storage.ErrUsernameTaken):
		http.Error(w, "username already taken", http.StatusConflict)
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "update profile failed", "user_id", userID, "err", err)
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    toUserResponse(updated),
	})
}

// Users lists every other user as {id, username}.
func (h *ProfileHandler) Users(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	users, err := h.users.ListOthers(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}
	type entry struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	out := make([]entry, 0, len(users))
	for _, u := range users {
		out = append(out, entry{ID: u.ID, Username: u.Username})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ProfileHandler) Timezones(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, availability.Timezones())
}
