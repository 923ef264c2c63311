package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/sqlc"
)

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetAuthUserByEmail(ctx, email)
	if err != nil {
		return nil, s.mapError(err)
	}

	return toUser(row), nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetAuthUserByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return toUser(row), nil
}

func (s *DB) GetOpenVerificationByCodeHash(ctx context.Context, codeHash string, p entity.Purpose, now time.Time) (_ *entity.Verification, err error) {
	ctx, span := s.startSpan(ctx, "GetOpenVerificationByCodeHash")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetOpenAuthUserVerificationByCodeHash(ctx, sqlc.GetOpenAuthUserVerificationByCodeHashParams{
		CodeHash: codeHash,
		Purpose:  p,
		Now:      timestamptz(now),
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return toVerification(row), nil
}

func (s *DB) GetLatestOpenVerification(ctx context.Context, userID int64, p entity.Purpose) (_ *entity.Verification, err error) {
	ctx, span := s.startSpan(ctx, "GetLatestOpenVerification")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetLatestOpenAuthUserVerification(ctx, sqlc.GetLatestOpenAuthUserVerificationParams{
		UserID:  userID,
		Purpose: p,
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return toVerification(row), nil
}
