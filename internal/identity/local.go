package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/codingniket/FinApp/internal/cache"
	"github.com/codingniket/FinApp/internal/core"
	applog "github.com/codingniket/FinApp/internal/log"
	"github.com/codingniket/FinApp/internal/mail"
	"github.com/codingniket/FinApp/internal/storage"
)

const (
	defaultCodeTTL      = 15 * time.Minute
	defaultSessionTTL   = 720 * time.Hour
	maxVerifyAttempts   = 5
	minPasswordLength   = 8
	sessionCacheSize    = 1024
	sessionCacheTTL     = time.Minute
	verificationCodeLen = 6
)

// Store is the persistence used by Local.
type Store interface {
	GetUserByID(ctx context.Context, id string) (storage.User, error)
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	CreateSignUp(ctx context.Context, s storage.SignUp) error
	GetSignUp(ctx context.Context, id string) (storage.SignUp, error)
	SetSignUpCode(ctx context.Context, id, codeHash string, expiresAt time.Time) error
	IncrementSignUpAttempts(ctx context.Context, id string) error
	CompleteSignUp(ctx context.Context, signUpID string, user storage.User, session storage.Session) error
	CreateSession(ctx context.Context, s storage.Session) error
	GetSession(ctx context.Context, id string) (storage.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
}

// LocalConfig configures Local.
type LocalConfig struct {
	Secret     []byte
	SessionTTL time.Duration
	CodeTTL    time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Local is a self-hosted Provider: bcrypt passwords, emailed codes and
// HS256 session tokens backed by revocable session rows.
type Local struct {
	store    Store
	mailer   mail.Mailer
	cfg      LocalConfig
	validate *validator.Validate
	sessions *cache.LRUCache[core.User]
	logger   *applog.Logger
	now      func() time.Time
}

var _ Provider = (*Local)(nil)

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewLocal creates the provider. When manager is not nil the session
// cache is registered with it for periodic cleanup.
func NewLocal(store Store, mailer mail.Mailer, cfg LocalConfig, manager *cache.Manager, logger *applog.Logger) (*Local, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = defaultCodeTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = applog.Discard()
	}

	sessions := cache.NewLRUCache[core.User](sessionCacheSize, sessionCacheTTL)
	if manager != nil {
		manager.Register(sessions)
	}

	return &Local{
		store:    store,
		mailer:   mailer,
		cfg:      cfg,
		validate: validator.New(),
		sessions: sessions,
		logger:   logger.WithComponent(applog.ComponentIdentity),
		now:      time.Now,
	}, nil
}

func (l *Local) SignIn(ctx context.Context, identifier, password string) (Attempt, error) {
	user, err := l.store.GetUserByEmail(ctx, identifier)
	if errors.Is(err, storage.ErrNotFound) {
		return Attempt{}, ErrInvalidCredentials
	}
	if err != nil {
		return Attempt{}, fmt.Errorf("sign in: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Attempt{}, ErrInvalidCredentials
	}

	now := l.now()
	session := storage.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(l.cfg.SessionTTL),
	}
	if err := l.store.CreateSession(ctx, session); err != nil {
		return Attempt{}, fmt.Errorf("sign in: %w", err)
	}

	l.logger.InfoContext(ctx, "User signed in", applog.FieldUserID, user.ID, applog.FieldOperation, applog.OpSignIn)
	return Attempt{Status: StatusComplete, CreatedSessionID: session.ID}, nil
}

func (l *Local) SignUp(ctx context.Context, email, password string) (SignUp, error) {
	email = strings.TrimSpace(email)
	if err := l.validate.Var(email, "required,email"); err != nil {
		return SignUp{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return SignUp{}, ErrWeakPassword
	}

	if _, err := l.store.GetUserByEmail(ctx, email); err == nil {
		return SignUp{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return SignUp{}, fmt.Errorf("sign up: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cfg.BcryptCost)
	if err != nil {
		return SignUp{}, fmt.Errorf("hash password: %w", err)
	}

	su := storage.SignUp{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    l.now(),
	}
	if err := l.store.CreateSignUp(ctx, su); err != nil {
		return SignUp{}, fmt.Errorf("sign up: %w", err)
	}

	return SignUp{ID: su.ID, EmailAddress: strings.ToLower(email), Status: StatusMissingRequirements}, nil
}

func (l *Local) PrepareEmailVerification(ctx context.Context, signUpID string) error {
	su, err := l.store.GetSignUp(ctx, signUpID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrSignUpNotFound
	}
	if err != nil {
		return fmt.Errorf("prepare verification: %w", err)
	}
	if su.Status == storage.SignUpComplete {
		return ErrSignUpNotFound
	}

	code, err := generateCode(verificationCodeLen)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), l.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}
	if err := l.store.SetSignUpCode(ctx, su.ID, string(hash), l.now().Add(l.cfg.CodeTTL)); err != nil {
		return fmt.Errorf("prepare verification: %w", err)
	}

	return l.mailer.SendVerificationCode(ctx, su.Email, code)
}

func (l *Local) AttemptEmailVerification(ctx context.Context, signUpID, code string) (Attempt, error) {
	su, err := l.store.GetSignUp(ctx, signUpID)
	if errors.Is(err, storage.ErrNotFound) {
		return Attempt{}, ErrSignUpNotFound
	}
	if err != nil {
		return Attempt{}, fmt.Errorf("verify: %w", err)
	}
	if su.Status == storage.SignUpComplete {
		return Attempt{Status: StatusComplete, CreatedSessionID: su.SessionID}, nil
	}
	if su.CodeHash == "" {
		return Attempt{Status: StatusMissingRequirements}, ErrInvalidCode
	}
	if su.Attempts >= maxVerifyAttempts {
		return Attempt{Status: StatusMissingRequirements}, ErrTooManyAttempts
	}

	now := l.now()
	if !now.Before(su.CodeExpiresAt) {
		return Attempt{Status: StatusMissingRequirements}, ErrCodeExpired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(su.CodeHash), []byte(strings.TrimSpace(code))); err != nil {
		if incErr := l.store.IncrementSignUpAttempts(ctx, su.ID); incErr != nil {
			l.logger.ErrorContext(ctx, "Failed to record verification attempt", applog.FieldError, incErr)
		}
		return Attempt{Status: StatusMissingRequirements}, ErrInvalidCode
	}

	user := storage.User{
		ID:           uuid.NewString(),
		Email:        su.Email,
		PasswordHash: su.PasswordHash,
		CreatedAt:    now,
	}
	session := storage.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(l.cfg.SessionTTL),
	}
	if err := l.store.CompleteSignUp(ctx, su.ID, user, session); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return Attempt{}, ErrEmailTaken
		}
		return Attempt{}, fmt.Errorf("verify: %w", err)
	}

	l.logger.InfoContext(ctx, "User signed up", applog.FieldUserID, user.ID, applog.FieldOperation, applog.OpSignUp)
	return Attempt{Status: StatusComplete, CreatedSessionID: session.ID}, nil
}

func (l *Local) SetActive(ctx context.Context, sessionID string) (string, error) {
	session, err := l.store.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrInvalidSession
	}
	if err != nil {
		return "", fmt.Errorf("set active: %w", err)
	}
	now := l.now()
	if !session.Active(now) {
		return "", ErrInvalidSession
	}

	claims := sessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (l *Local) Session(ctx context.Context, token string) (core.User, error) {
	claims, err := l.parse(token)
	if err != nil {
		return core.User{}, ErrInvalidSession
	}
	if user, ok := l.sessions.Get(claims.SessionID); ok {
		return user, nil
	}

	session, err := l.store.GetSession(ctx, claims.SessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrInvalidSession
	}
	if err != nil {
		return core.User{}, fmt.Errorf("session: %w", err)
	}
	if !session.Active(l.now()) || session.UserID != claims.Subject {
		return core.User{}, ErrInvalidSession
	}

	stored, err := l.store.GetUserByID(ctx, session.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrInvalidSession
	}
	if err != nil {
		return core.User{}, fmt.Errorf("session: %w", err)
	}

	user := core.User{ID: stored.ID, FirstName: stored.FirstName, Email: stored.Email}
	l.sessions.Set(claims.SessionID, user)
	return user, nil
}

func (l *Local) SignOut(ctx context.Context, token string) error {
	claims, err := l.parse(token)
	if err != nil {
		return ErrInvalidSession
	}
	l.sessions.Delete(claims.SessionID)
	if err := l.store.RevokeSession(ctx, claims.SessionID, l.now()); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	l.logger.InfoContext(ctx, "User signed out", applog.FieldUserID, claims.Subject, applog.FieldOperation, applog.OpSignOut)
	return nil
}

func (l *Local) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return l.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func generateCode(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
