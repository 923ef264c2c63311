package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/migration"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in short mode")
	}

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("authflow"),
		postgres.WithUsername("authflow"),
		postgres.WithPassword("authflow"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	if err := migration.Run(dsn, migration.Up); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	t.Cleanup(pool.Close)

	return NewDB(pool, instrument.NewNoop())
}

func TestDB_RegistrationAndVerification(t *testing.T) {
	// Arrange
	s := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	user := entity.User{ID: 1, Email: "a@example.com", PasswordHash: "hash", CreatedAt: now}
	v := entity.Verification{
		ID: 10, UserID: 1, Purpose: entity.PurposeVerifyEmail, CodeHash: "digest",
		CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	}

	// Act
	if err := s.NewRegistration(ctx, user, v, entity.RoleUsers); err != nil {
		t.Fatalf("NewRegistration() error = %v", err)
	}
	dup := s.NewRegistration(ctx, entity.User{ID: 2, Email: "a@example.com", PasswordHash: "x", CreatedAt: now},
		entity.Verification{ID: 11, UserID: 2, Purpose: entity.PurposeVerifyEmail, CodeHash: "d2", CreatedAt: now, ExpiresAt: now}, entity.RoleUsers)

	// Assert
	if !errors.Is(dup, goerror.ErrConflict) {
		t.Fatalf("duplicate registration error = %v, want ErrConflict", dup)
	}

	got, err := s.GetOpenVerificationByCodeHash(ctx, "digest", entity.PurposeVerifyEmail, now)
	if err != nil {
		t.Fatalf("GetOpenVerificationByCodeHash() error = %v", err)
	}
	if got.ID != 10 || got.UserID != 1 {
		t.Fatalf("verification = %+v", got)
	}
	if _, err := s.GetOpenVerificationByCodeHash(ctx, "digest", entity.PurposeVerifyEmail, now.Add(10*time.Minute)); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expired lookup error = %v, want ErrNotFound", err)
	}

	if err := s.VerifyUserEmail(ctx, 1, 10, now); err != nil {
		t.Fatalf("VerifyUserEmail() error = %v", err)
	}
	if err := s.VerifyUserEmail(ctx, 1, 10, now); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("second VerifyUserEmail() error = %v, want ErrNotFound", err)
	}

	u, err := s.GetUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if !u.Verified() {
		t.Fatal("user not verified")
	}
}

func TestDB_IssueVerification_CooldownIsAtomic(t *testing.T) {
	// Arrange
	s := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := s.NewRegistration(ctx, entity.User{ID: 1, Email: "a@example.com", PasswordHash: "h", CreatedAt: now},
		entity.Verification{ID: 10, UserID: 1, Purpose: entity.PurposeVerifyEmail, CodeHash: "first", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		entity.RoleUsers); err != nil {
		t.Fatalf("NewRegistration() error = %v", err)
	}

	later := now.Add(2 * time.Minute)
	const workers = 8

	// Act
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		cooldowns int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.IssueVerification(ctx, entity.Verification{
				ID: int64(100 + i), UserID: 1, Purpose: entity.PurposeVerifyEmail,
				CodeHash: "resend", CreatedAt: later, ExpiresAt: later.Add(time.Hour),
			}, time.Minute)

			mu.Lock()
			defer mu.Unlock()
			var cd *entity.ErrCooldown
			switch {
			case err == nil:
				ok++
			case errors.As(err, &cd):
				cooldowns++
			default:
				t.Errorf("IssueVerification() error = %v", err)
			}
		}()
	}
	wg.Wait()

	// Assert
	if ok != 1 || cooldowns != workers-1 {
		t.Fatalf("ok = %d, cooldowns = %d", ok, cooldowns)
	}
	if _, err := s.GetOpenVerificationByCodeHash(ctx, "first", entity.PurposeVerifyEmail, later); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("superseded record still open: %v", err)
	}
	latest, err := s.GetLatestOpenVerification(ctx, 1, entity.PurposeVerifyEmail)
	if err != nil {
		t.Fatalf("GetLatestOpenVerification() error = %v", err)
	}
	if latest.CodeHash != "resend" {
		t.Fatalf("latest = %+v", latest)
	}
}

func TestDB_ResetUserPassword_SingleUse(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := s.NewRegistration(ctx, entity.User{ID: 1, Email: "a@example.com", PasswordHash: "old", CreatedAt: now},
		entity.Verification{ID: 10, UserID: 1, Purpose: entity.PurposeVerifyEmail, CodeHash: "v", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		entity.RoleUsers); err != nil {
		t.Fatalf("NewRegistration() error = %v", err)
	}
	if err := s.IssueVerification(ctx, entity.Verification{
		ID: 20, UserID: 1, Purpose: entity.PurposeResetPassword, CodeHash: "r", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}, time.Minute); err != nil {
		t.Fatalf("IssueVerification() error = %v", err)
	}

	if err := s.ResetUserPassword(ctx, 1, 20, "new", now); err != nil {
		t.Fatalf("ResetUserPassword() error = %v", err)
	}
	if err := s.ResetUserPassword(ctx, 1, 20, "newer", now); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("second ResetUserPassword() error = %v, want ErrNotFound", err)
	}

	u, err := s.GetUserByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if u.PasswordHash != "new" {
		t.Fatalf("PasswordHash = %q", u.PasswordHash)
	}
}
