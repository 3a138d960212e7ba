package handlers

import (
	"net/http"

	"project-analyzer-web/services"
)

// sessionResolver attaches visitor sessions to requests via cookie.
type sessionResolver struct {
	store      services.SessionStore
	cookieName string
}

// resolve returns the request's live session, creating one (and setting the
// cookie) when none exists.
func (sr *sessionResolver) resolve(w http.ResponseWriter, r *http.Request) (*services.Session, error) {
	if cookie, err := r.Cookie(sr.cookieName); err == nil && cookie.Value != "" {
		if session, err := sr.store.Get(r.Context(), cookie.Value); err == nil {
			return session, nil
		}
	}

	session, err := sr.store.Create(r.Context())
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sr.cookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}

// lookup returns the session named by id without creating one.
func (sr *sessionResolver) lookup(r *http.Request, id string) (*services.Session, error) {
	return sr.store.Get(r.Context(), id)
}
