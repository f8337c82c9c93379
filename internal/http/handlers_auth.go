package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/codingniket/FinApp/internal/identity"
	applog "github.com/codingniket/FinApp/internal/log"
)

type authPage struct {
	layout
	Email    string
	SignUpID string
	Error    string
}

func (s *Server) handleSignInForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "sign_in.html", authPage{layout: s.newLayout(w, r, "Welcome Back", "")})
}

// handleSignIn proceeds only on a complete attempt. Failures are logged
// and the form is shown again without a message.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	page := authPage{layout: s.newLayout(w, r, "Welcome Back", ""), Email: email}

	attempt, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		logger.WarnContext(ctx, "Sign in failed", applog.FieldError, err, applog.FieldOperation, applog.OpSignIn)
		s.render(w, r, http.StatusUnauthorized, "sign_in.html", page)
		return
	}
	if !attempt.Complete() {
		logger.WarnContext(ctx, "Sign in incomplete", "status", attempt.Status, applog.FieldOperation, applog.OpSignIn)
		s.render(w, r, http.StatusUnauthorized, "sign_in.html", page)
		return
	}

	if !s.activate(w, r, attempt.CreatedSessionID) {
		s.render(w, r, http.StatusInternalServerError, "sign_in.html", page)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSignUpForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "sign_up.html", authPage{layout: s.newLayout(w, r, "Create Account", "")})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	page := authPage{layout: s.newLayout(w, r, "Create Account", ""), Email: email}

	signUp, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		logger.WarnContext(ctx, "Sign up failed", applog.FieldError, err, applog.FieldOperation, applog.OpSignUp)
		page.Error = authErrorMessage(err)
		s.render(w, r, http.StatusUnprocessableEntity, "sign_up.html", page)
		return
	}
	if err := s.identity.PrepareEmailVerification(ctx, signUp.ID); err != nil {
		logger.ErrorContext(ctx, "Prepare verification failed", applog.FieldError, err, applog.FieldOperation, applog.OpSignUp)
		page.Error = authErrorMessage(err)
		s.render(w, r, http.StatusUnprocessableEntity, "sign_up.html", page)
		return
	}

	page.Title = "Verify Your Email"
	page.SignUpID = signUp.ID
	page.Email = signUp.EmailAddress
	s.render(w, r, http.StatusOK, "verify.html", page)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	page := authPage{
		layout:   s.newLayout(w, r, "Verify Your Email", ""),
		SignUpID: r.PostForm.Get("sign_up_id"),
		Email:    r.PostForm.Get("email"),
	}
	code := strings.TrimSpace(r.PostForm.Get("code"))

	attempt, err := s.identity.AttemptEmailVerification(ctx, page.SignUpID, code)
	if err != nil {
		logger.WarnContext(ctx, "Verification failed", applog.FieldError, err, applog.FieldOperation, applog.OpVerify)
		page.Error = authErrorMessage(err)
		s.render(w, r, http.StatusUnprocessableEntity, "verify.html", page)
		return
	}
	if !attempt.Complete() {
		logger.WarnContext(ctx, "Verification incomplete", "status", attempt.Status, applog.FieldOperation, applog.OpVerify)
		s.render(w, r, http.StatusUnprocessableEntity, "verify.html", page)
		return
	}

	if !s.activate(w, r, attempt.CreatedSessionID) {
		page.Error = genericAuthError
		s.render(w, r, http.StatusInternalServerError, "verify.html", page)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if token := sessionToken(r); token != "" {
		if err := s.identity.SignOut(ctx, token); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Sign out failed", applog.FieldError, err, applog.FieldOperation, applog.OpSignOut)
		}
	}
	clearSession(w)
	http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
}

// activate exchanges a created session for a token and stores it in the
// session cookie.
func (s *Server) activate(w http.ResponseWriter, r *http.Request, sessionID string) bool {
	token, err := s.identity.SetActive(r.Context(), sessionID)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Activating session failed", applog.FieldError, err)
		return false
	}
	s.setSession(w, r, token)
	return true
}

const genericAuthError = "Something went wrong, please try again"

var userFacingAuthErrors = []error{
	identity.ErrInvalidCredentials,
	identity.ErrInvalidEmail,
	identity.ErrWeakPassword,
	identity.ErrEmailTaken,
	identity.ErrSignUpNotFound,
	identity.ErrInvalidCode,
	identity.ErrCodeExpired,
	identity.ErrTooManyAttempts,
}

func authErrorMessage(err error) string {
	for _, known := range userFacingAuthErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return genericAuthError
}
