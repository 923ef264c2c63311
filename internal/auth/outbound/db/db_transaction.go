package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/sqlc"
)

func (s *DB) inTx(ctx context.Context, fn func(wtx *sqlc.Queries) error) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if err := fn(s.query.WithTx(tx)); err != nil {
		return err
	}

	return s.mapError(tx.Commit(ctx))
}

func (s *DB) NewRegistration(ctx context.Context, user entity.User, v entity.Verification, role string) (err error) {
	ctx, span := s.startSpan(ctx, "NewRegistration")
	defer func() { s.endSpan(span, err) }()

	return s.inTx(ctx, func(wtx *sqlc.Queries) error {
		if err := wtx.CreateAuthUser(ctx, sqlc.CreateAuthUserParams{
			ID:           user.ID,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			CreatedAt:    timestamptz(user.CreatedAt),
		}); err != nil {
			return s.mapError(err)
		}

		if err := wtx.AddAuthUserRole(ctx, sqlc.AddAuthUserRoleParams{
			Subject: strconv.FormatInt(user.ID, 10),
			Role:    role,
		}); err != nil {
			return s.mapError(err)
		}

		return s.issueVerification(ctx, wtx, v, 0)
	})
}

func (s *DB) IssueVerification(ctx context.Context, v entity.Verification, cooldown time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "IssueVerification")
	defer func() { s.endSpan(span, err) }()

	return s.inTx(ctx, func(wtx *sqlc.Queries) error {
		return s.issueVerification(ctx, wtx, v, cooldown)
	})
}

// issueVerification serialises issuers of the same (user, purpose) on a
// transaction scoped advisory lock, so the cooldown check and the insert
// cannot interleave.
func (s *DB) issueVerification(ctx context.Context, wtx *sqlc.Queries, v entity.Verification, cooldown time.Duration) error {
	if err := wtx.LockAuthVerification(ctx, fmt.Sprintf("%d:%d", v.UserID, v.Purpose)); err != nil {
		return s.mapError(err)
	}

	if cooldown > 0 {
		last, err := wtx.GetLatestAuthUserVerificationCreatedAt(ctx, sqlc.GetLatestAuthUserVerificationCreatedAtParams{
			UserID:  v.UserID,
			Purpose: v.Purpose,
		})
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return s.mapError(err)
		}
		if err == nil && last.Valid {
			if elapsed := v.CreatedAt.Sub(last.Time); elapsed < cooldown {
				return &entity.ErrCooldown{Remaining: cooldown - elapsed}
			}
		}
	}

	if _, err := wtx.ConsumeOpenAuthUserVerifications(ctx, sqlc.ConsumeOpenAuthUserVerificationsParams{
		UserID:  v.UserID,
		Purpose: v.Purpose,
		UsedAt:  timestamptz(v.CreatedAt),
	}); err != nil {
		return s.mapError(err)
	}

	if err := wtx.CreateAuthUserVerification(ctx, sqlc.CreateAuthUserVerificationParams{
		ID:        v.ID,
		UserID:    v.UserID,
		Purpose:   v.Purpose,
		CodeHash:  v.CodeHash,
		CreatedAt: timestamptz(v.CreatedAt),
		ExpiresAt: timestamptz(v.ExpiresAt),
	}); err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *DB) VerifyUserEmail(ctx context.Context, userID, verificationID int64, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "VerifyUserEmail")
	defer func() { s.endSpan(span, err) }()

	return s.inTx(ctx, func(wtx *sqlc.Queries) error {
		n, err := wtx.UseAuthUserVerification(ctx, sqlc.UseAuthUserVerificationParams{
			ID:     verificationID,
			UsedAt: timestamptz(at),
		})
		if err != nil {
			return s.mapError(err)
		}
		if n == 0 {
			return goerror.ErrNotFound
		}

		// zero rows means already verified, which is fine
		if _, err := wtx.MarkAuthUserEmailVerified(ctx, sqlc.MarkAuthUserEmailVerifiedParams{
			ID:              userID,
			EmailVerifiedAt: timestamptz(at),
		}); err != nil {
			return s.mapError(err)
		}

		return nil
	})
}

func (s *DB) ResetUserPassword(ctx context.Context, userID, verificationID int64, passwordHash string, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "ResetUserPassword")
	defer func() { s.endSpan(span, err) }()

	return s.inTx(ctx, func(wtx *sqlc.Queries) error {
		n, err := wtx.UseAuthUserVerification(ctx, sqlc.UseAuthUserVerificationParams{
			ID:     verificationID,
			UsedAt: timestamptz(at),
		})
		if err != nil {
			return s.mapError(err)
		}
		if n == 0 {
			return goerror.ErrNotFound
		}

		n, err = wtx.UpdateAuthUserPassword(ctx, sqlc.UpdateAuthUserPasswordParams{
			ID:           userID,
			PasswordHash: passwordHash,
			UpdatedAt:    timestamptz(at),
		})
		if err != nil {
			return s.mapError(err)
		}
		if n == 0 {
			return goerror.ErrNotFound
		}

		return nil
	})
}
