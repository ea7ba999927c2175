package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const visitorCookie = "visitor_id"

// visitorID returns the caller's visitor id. When the request carries none
// and issue is set, a new id is minted and sent back as a cookie.
func visitorID(w http.ResponseWriter, r *http.Request, issue bool, ttl time.Duration) (string, bool) {
	if c, err := r.Cookie(visitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			noteOf(r).setVisitor(id.String())
			return id.String(), true
		}
	}
	if !issue {
		return "", false
	}
	id := uuid.NewString()
	noteOf(r).setVisitor(id)
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}
