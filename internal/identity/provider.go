// Package identity covers sign-in, sign-up with an emailed code, and
// session lookup. Screens depend on Provider only; Local is the
// self-hosted implementation.
package identity

import (
	"context"
	"errors"

	"github.com/codingniket/FinApp/internal/core"
)

// Attempt and sign-up statuses. Screens proceed only on StatusComplete.
const (
	StatusComplete            = "complete"
	StatusMissingRequirements = "missing_requirements"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("enter a valid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("that email address is taken")
	ErrSignUpNotFound     = errors.New("sign-up not found")
	ErrInvalidCode        = errors.New("incorrect verification code")
	ErrCodeExpired        = errors.New("verification code expired, request a new one")
	ErrTooManyAttempts    = errors.New("too many attempts, request a new code")
	ErrInvalidSession     = errors.New("session is not valid")
)

// Attempt is the outcome of a sign-in or a verification step.
type Attempt struct {
	Status           string
	CreatedSessionID string
}

// Complete reports whether the attempt produced a session.
func (a Attempt) Complete() bool {
	return a.Status == StatusComplete
}

// SignUp is a pending registration awaiting email verification.
type SignUp struct {
	ID           string
	EmailAddress string
	Status       string
}

// Provider is the identity backend used by the screens.
type Provider interface {
	SignIn(ctx context.Context, identifier, password string) (Attempt, error)
	SignUp(ctx context.Context, email, password string) (SignUp, error)
	PrepareEmailVerification(ctx context.Context, signUpID string) error
	AttemptEmailVerification(ctx context.Context, signUpID, code string) (Attempt, error)
	// SetActive turns a created session into a bearer token.
	SetActive(ctx context.Context, sessionID string) (string, error)
	// Session resolves a token to its user, or ErrInvalidSession.
	Session(ctx context.Context, token string) (core.User, error)
	SignOut(ctx context.Context, token string) error
}
