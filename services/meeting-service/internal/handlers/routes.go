package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/meetsync/libs/httpx"
)

type Routes struct {
	Auth     *AuthHandler
	Profile  *ProfileHandler
	Meetings *MeetingHandler
	Suggest  *SuggestHandler
	Verifier httpx.TokenVerifier
}

// Register mounts the /api surface on mux. Everything except registration,
// login, token refresh, session check and the timezone list needs a bearer token.
func (rt Routes) Register(mux *http.ServeMux) {
	private := func(h http.HandlerFunc) http.Handler {
		return httpx.RequireAuth(rt.Verifier)(h)
	}

	mux.HandleFunc("/api/register", rt.Auth.Register)
	mux.HandleFunc("/api/login", rt.Auth.Login)
	mux.HandleFunc("/api/refresh", rt.Auth.Refresh)
	mux.HandleFunc("/api/check_session", rt.Auth.CheckSession)
	mux.HandleFunc("/api/timezones", rt.Profile.Timezones)

	mux.Handle("/api/logout", private(rt.Auth.Logout))
	mux.Handle("/api/profile", private(rt.Profile.Profile))
	mux.Handle("/api/users", private(rt.Profile.Users))
	mux.Handle("/api/meetings", private(rt.Meetings.Meetings))
	mux.Handle("/api/meetings/upcoming", private(rt.Meetings.Upcoming))
	mux.Handle("/api/meetings/", private(rt.Meetings.MeetingByID))
	mux.Handle("/api/meetings.ics", private(rt.Meetings.Calendar))
	mux.Handle("/api/suggest-times", private(rt.Suggest.SuggestTimes))
}
