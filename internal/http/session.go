package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/codingniket/FinApp/internal/core"
	"github.com/codingniket/FinApp/internal/identity"
	applog "github.com/codingniket/FinApp/internal/log"
)

const sessionCookieName = "finapp_session"

type userContextKey struct{}

func withUser(ctx context.Context, user core.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// userFromContext returns the signed-in user placed by requireUser.
func userFromContext(ctx context.Context) core.User {
	user, _ := ctx.Value(userContextKey{}).(core.User)
	return user
}

func (s *Server) setSession(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// currentUser resolves the session cookie. ok is false when there is no
// valid session.
func (s *Server) currentUser(r *http.Request) (core.User, bool) {
	token := sessionToken(r)
	if token == "" {
		return core.User{}, false
	}
	user, err := s.identity.Session(r.Context(), token)
	if err != nil {
		if !errors.Is(err, identity.ErrInvalidSession) {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Session lookup failed", applog.FieldError, err)
		}
		return core.User{}, false
	}
	return user, true
}

// requireUser redirects to the sign-in screen unless the request carries a
// valid session.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(r)
		if !ok {
			if sessionToken(r) != "" {
				clearSession(w)
			}
			http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
			return
		}
		ctx := withUser(r.Context(), user)
		ctx = applog.NewContext(ctx, applog.FromContext(ctx).With(applog.FieldUserID, user.ID))
		next(w, r.WithContext(ctx))
	}
}

// redirectSignedIn sends users that already have a session to the home
// screen.
func (s *Server) redirectSignedIn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.currentUser(r); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}
