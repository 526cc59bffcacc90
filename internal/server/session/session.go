// Package session assigns a browser session ID per client. The ID keys the
// hand-off store and conversation state that the web pages previously kept
// in sessionStorage.
package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// CookieName is the session cookie set for browsers.
	CookieName = "cibi_session"
	// HeaderName lets non-browser clients pin a session explicitly.
	HeaderName = "X-Session-ID"
)

type contextKey struct{}

// Middleware ensures every request carries a session ID, minting one and
// setting the cookie when absent.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := fromHeaderOrCookie(r)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), contextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromRequest returns the request's session ID. Falls back to header/cookie
// so handlers work without the middleware in tests.
func FromRequest(r *http.Request) string {
	if id, ok := r.Context().Value(contextKey{}).(string); ok && id != "" {
		return id
	}
	return fromHeaderOrCookie(r)
}

func fromHeaderOrCookie(r *http.Request) string {
	if id := r.Header.Get(HeaderName); id != "" {
		return id
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}
