package middleware

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

const SessionCookieName = "storefront_session"

type SessionCookieOptions struct {
	Secure bool
}

// Session resolves the browser's session from its cookie, starting a new
// one (and setting the cookie) when it is missing or expired.
func Session(reg *session.Registry, opts SessionCookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s *session.Session
			if ck, err := r.Cookie(SessionCookieName); err == nil && ck.Value != "" {
				s, _ = reg.Get(ck.Value)
			}
			if s == nil {
				s = reg.Start()
				SetSessionCookie(w, s.ID, opts)
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, ctxSession, s)
}

// GetSession returns the request's session, or nil outside the Session
// middleware.
func GetSession(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxSession).(*session.Session)
	return s
}

func SetSessionCookie(w http.ResponseWriter, id string, opts SessionCookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(w http.ResponseWriter, opts SessionCookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
