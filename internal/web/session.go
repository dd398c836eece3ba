package web

import (
	"net/http"

	"github.com/google/uuid"
)

// sessionHeader lets API clients without cookies name their session.
const sessionHeader = "X-Session-ID"

// sessionID returns the caller's session ID, or "" when there is none.
func (s *Server) sessionID(r *http.Request) string {
	if id := r.Header.Get(sessionHeader); validSessionID(id) {
		return id
	}
	if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil && validSessionID(c.Value) {
		return c.Value
	}
	return ""
}

// ensureSession returns the caller's session ID, issuing a new cookie when
// the request carries none. The cookie is refreshed so it outlives the
// stored dataset.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	id := s.sessionID(r)
	if id == "" {
		id = uuid.NewString()
	}
	if r.Header.Get(sessionHeader) == "" {
		http.SetCookie(w, s.sessionCookie(id))
	} else {
		w.Header().Set(sessionHeader, id)
	}
	return id
}

func (s *Server) sessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Security.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// validSessionID accepts only UUIDs so arbitrary strings never reach the
// session store keys.
func validSessionID(id string) bool {
	if id == "" {
		return false
	}
	return uuid.Validate(id) == nil
}
