package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/sqlc"
)

// UseVerification only touches a record that is still open, so two
// concurrent callers cannot both consume it.
func (s *DB) UseVerification(ctx context.Context, id int64, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UseVerification")
	defer func() { s.endSpan(span, err) }()

	n, err := s.query.UseAuthUserVerification(ctx, sqlc.UseAuthUserVerificationParams{
		ID:     id,
		UsedAt: timestamptz(at),
	})
	if err != nil {
		return s.mapError(err)
	}
	if n == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
