// Package storage persists the self-hosted identity provider's users,
// pending sign-ups and sessions in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Sign-up statuses.
const (
	SignUpMissingRequirements = "missing_requirements"
	SignUpComplete            = "complete"
)

type User struct {
	ID           string
	Email        string
	FirstName    string
	PasswordHash string
	CreatedAt    time.Time
}

type SignUp struct {
	ID            string
	Email         string
	PasswordHash  string
	CodeHash      string
	CodeExpiresAt time.Time
	Attempts      int
	Status        string
	UserID        string
	SessionID     string
	CreatedAt     time.Time
}

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session can still authenticate at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (User, error) {
	return r.getUser(ctx, `SELECT id, email, first_name, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return r.getUser(ctx, `SELECT id, email, first_name, password_hash, created_at FROM users WHERE email = ?`, normalizeEmail(email))
}

func (r *SQLiteRepository) getUser(ctx context.Context, query string, arg string) (User, error) {
	var u User
	var created int64
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.FirstName, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, nil
}

func (r *SQLiteRepository) CreateSignUp(ctx context.Context, s SignUp) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sign_ups (id, email, password_hash, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, normalizeEmail(s.Email), s.PasswordHash, SignUpMissingRequirements, s.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("create sign-up: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSignUp(ctx context.Context, id string) (SignUp, error) {
	var s SignUp
	var expires, created int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, code_hash, code_expires_at, attempts, status, user_id, session_id, created_at
		 FROM sign_ups WHERE id = ?`, id).
		Scan(&s.ID, &s.Email, &s.PasswordHash, &s.CodeHash, &expires, &s.Attempts, &s.Status, &s.UserID, &s.SessionID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return SignUp{}, ErrNotFound
	}
	if err != nil {
		return SignUp{}, fmt.Errorf("get sign-up: %w", err)
	}
	s.CodeExpiresAt = time.Unix(expires, 0).UTC()
	s.CreatedAt = time.Unix(created, 0).UTC()
	return s, nil
}

// SetSignUpCode stores a fresh verification code and resets the attempt
// counter.
func (r *SQLiteRepository) SetSignUpCode(ctx context.Context, id, codeHash string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sign_ups SET code_hash = ?, code_expires_at = ?, attempts = 0 WHERE id = ? AND status = ?`,
		codeHash, expiresAt.Unix(), id, SignUpMissingRequirements)
	if err != nil {
		return fmt.Errorf("set sign-up code: %w", err)
	}
	return expectOneRow(res)
}

// IncrementSignUpAttempts records a failed verification attempt.
func (r *SQLiteRepository) IncrementSignUpAttempts(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sign_ups SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment sign-up attempts: %w", err)
	}
	return nil
}

// CompleteSignUp creates the user and its first session and marks the
// sign-up complete, atomically.
func (r *SQLiteRepository) CompleteSignUp(ctx context.Context, signUpID string, user User, session Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, normalizeEmail(user.Email), user.FirstName, user.PasswordHash, user.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID, session.CreatedAt.Unix(), session.ExpiresAt.Unix()); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE sign_ups SET status = ?, user_id = ?, session_id = ?, code_hash = '' WHERE id = ? AND status = ?`,
		SignUpComplete, user.ID, session.ID, signUpID, SignUpMissingRequirements)
	if err != nil {
		return fmt.Errorf("complete sign-up: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.UserID, s.CreatedAt.Unix(), s.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (Session, error) {
	var s Session
	var created, expires int64
	var revoked sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.UserID, &created, &expires, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	s.CreatedAt = time.Unix(created, 0).UTC()
	s.ExpiresAt = time.Unix(expires, 0).UTC()
	if revoked.Valid {
		t := time.Unix(revoked.Int64, 0).UTC()
		s.RevokedAt = &t
	}
	return s, nil
}

func (r *SQLiteRepository) RevokeSession(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`, at.Unix(), id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and sign-ups that never
// completed, both older than cutoff.
func (r *SQLiteRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, q := range []string{
		`DELETE FROM sessions WHERE expires_at < ?`,
		`DELETE FROM sign_ups WHERE status != 'complete' AND created_at < ?`,
	} {
		res, err := r.db.ExecContext(ctx, q, cutoff.Unix())
		if err != nil {
			return total, fmt.Errorf("delete expired: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
