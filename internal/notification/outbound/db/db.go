package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/authflow/internal/notification/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/sqlc"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	query *sqlc.Queries
	ins   instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{query: sqlc.New(conn), ins: ins}
}

func (s *DB) mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}
	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) SaveDelivery(ctx context.Context, d entity.Delivery) (err error) {
	ctx, span := s.startSpan(ctx, "SaveDelivery")
	defer func() { s.endSpan(span, err) }()

	err = s.query.UpsertNotificationEmailDelivery(ctx, sqlc.UpsertNotificationEmailDeliveryParams{
		ID:             d.ID,
		IdempotencyKey: d.IdempotencyKey,
		Kind:           d.Kind.String(),
		Recipient:      d.Recipient,
		Status:         d.Status.String(),
		Attempts:       d.Attempts,
		LastError:      pgtype.Text{String: d.LastError, Valid: d.LastError != ""},
		CreatedAt:      pgtype.Timestamptz{Time: d.CreatedAt, Valid: true},
	})
	return s.mapError(err)
}

func (s *DB) GetDeliveryByKey(ctx context.Context, key string) (_ *entity.Delivery, err error) {
	ctx, span := s.startSpan(ctx, "GetDeliveryByKey")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetNotificationEmailDeliveryByKey(ctx, key)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &entity.Delivery{
		ID:             row.ID,
		IdempotencyKey: row.IdempotencyKey,
		Kind:           entity.Kind(row.Kind),
		Recipient:      row.Recipient,
		Status:         entity.Status(row.Status),
		Attempts:       row.Attempts,
		LastError:      row.LastError.String,
		CreatedAt:      row.CreatedAt.Time,
	}, nil
}
