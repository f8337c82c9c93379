package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "finapp.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finapp.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestSignUpLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := repo.CreateSignUp(ctx, SignUp{ID: "su1", Email: " Ada@Example.com ", PasswordHash: "h", CreatedAt: now}); err != nil {
		t.Fatalf("CreateSignUp: %v", err)
	}
	if err := repo.SetSignUpCode(ctx, "su1", "codehash", now.Add(15*time.Minute)); err != nil {
		t.Fatalf("SetSignUpCode: %v", err)
	}
	if err := repo.IncrementSignUpAttempts(ctx, "su1"); err != nil {
		t.Fatalf("IncrementSignUpAttempts: %v", err)
	}

	su, err := repo.GetSignUp(ctx, "su1")
	if err != nil {
		t.Fatalf("GetSignUp: %v", err)
	}
	if su.Email != "ada@example.com" || su.CodeHash != "codehash" || su.Attempts != 1 || su.Status != SignUpMissingRequirements {
		t.Fatalf("unexpected sign-up %+v", su)
	}
	if !su.CodeExpiresAt.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("CodeExpiresAt = %v", su.CodeExpiresAt)
	}

	user := User{ID: "u1", Email: su.Email, PasswordHash: su.PasswordHash, CreatedAt: now}
	session := Session{ID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := repo.CompleteSignUp(ctx, "su1", user, session); err != nil {
		t.Fatalf("CompleteSignUp: %v", err)
	}

	su, _ = repo.GetSignUp(ctx, "su1")
	if su.Status != SignUpComplete || su.SessionID != "s1" || su.UserID != "u1" {
		t.Fatalf("sign-up not completed: %+v", su)
	}
	if err := repo.SetSignUpCode(ctx, "su1", "x", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("completed sign-up should not accept a new code, got %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "ADA@example.com")
	if err != nil || got.ID != "u1" {
		t.Fatalf("GetUserByEmail = %+v, %v", got, err)
	}
}

func TestCompleteSignUpRejectsDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	for _, id := range []string{"a", "b"} {
		if err := repo.CreateSignUp(ctx, SignUp{ID: id, Email: "dup@example.com", PasswordHash: "h", CreatedAt: now}); err != nil {
			t.Fatalf("CreateSignUp(%s): %v", id, err)
		}
	}
	if err := repo.CompleteSignUp(ctx, "a", User{ID: "u1", Email: "dup@example.com", PasswordHash: "h", CreatedAt: now},
		Session{ID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("first CompleteSignUp: %v", err)
	}
	err := repo.CompleteSignUp(ctx, "b", User{ID: "u2", Email: "dup@example.com", PasswordHash: "h", CreatedAt: now},
		Session{ID: "s2", UserID: "u2", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := repo.GetSession(ctx, "s2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rolled back session should not exist, got %v", err)
	}
}

func TestSessionRevocationAndExpiry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := repo.CreateSignUp(ctx, SignUp{ID: "su", Email: "x@example.com", PasswordHash: "h", CreatedAt: now}); err != nil {
		t.Fatal(err)
	}
	if err := repo.CompleteSignUp(ctx, "su", User{ID: "u", Email: "x@example.com", PasswordHash: "h", CreatedAt: now},
		Session{ID: "s1", UserID: "u", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateSession(ctx, Session{ID: "old", UserID: "u", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}

	s, err := repo.GetSession(ctx, "s1")
	if err != nil || !s.Active(now) {
		t.Fatalf("session should be active: %+v %v", s, err)
	}
	if err := repo.RevokeSession(ctx, "s1", now); err != nil {
		t.Fatal(err)
	}
	s, _ = repo.GetSession(ctx, "s1")
	if s.Active(now) || s.RevokedAt == nil {
		t.Fatalf("session should be revoked: %+v", s)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpired = %d, %v; want 1", n, err)
	}
	if _, err := repo.GetSession(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session should be gone, got %v", err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
