package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/authflow/internal/notification/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/idempotency"
	"github.com/shandysiswandi/authflow/internal/pkg/mail"
)

const keyPrefixEmail = "notification:email:"

type emailInput struct {
	EventID string
	UserID  int64
	Kind    entity.Kind
	Data    templateData
}

// sendEmail mails one event at most once. A redelivered event whose mail
// already went out is acknowledged without sending. When every attempt fails
// the error is returned so the broker can redeliver.
func (s *Usecase) sendEmail(ctx context.Context, in emailInput) error {
	in.Data.Subject = subjects[in.Kind]

	html, err := renderHTML(in.Kind, in.Data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email body", "user_id", in.UserID, "kind", in.Kind.String(), "error", err)
		return nil
	}

	msg := mail.Message{
		To:       []string{in.Data.Email},
		Subject:  in.Data.Subject,
		TextBody: renderText(in.Kind, in.Data),
		HTMLBody: html,
		Headers:  map[string]string{"X-Entity-Ref-ID": in.EventID},
	}

	key := keyPrefixEmail + in.EventID
	err = s.idempotency.Exec(ctx, key, func(ctx context.Context) error {
		attempts, sendErr := s.deliver(ctx, msg)
		s.saveDelivery(ctx, key, in, attempts, sendErr)
		return sendErr
	})

	switch {
	case err == nil:
		slog.InfoContext(ctx, "email sent", "user_id", in.UserID, "kind", in.Kind.String(), "event_id", in.EventID)
		return nil
	case errors.Is(err, idempotency.ErrCompleted):
		slog.InfoContext(ctx, "email already sent for event", "event_id", in.EventID, "kind", in.Kind.String())
		return nil
	case errors.Is(err, idempotency.ErrInProgress):
		slog.WarnContext(ctx, "email for event is being sent elsewhere", "event_id", in.EventID, "kind", in.Kind.String())
		return nil
	default:
		slog.ErrorContext(ctx, "failed to send notification email", "user_id", in.UserID, "kind", in.Kind.String(), "event_id", in.EventID, "error", err)
		return err
	}
}

// deliver sends msg with exponential backoff and reports how many attempts
// it made.
func (s *Usecase) deliver(ctx context.Context, msg mail.Message) (int32, error) {
	maxRetries, base := s.retryPolicy()
	b := retry.WithMaxRetries(maxRetries, retry.NewExponential(base))

	var attempts int32
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		if err := s.repoMail.Send(ctx, msg); err != nil {
			slog.WarnContext(ctx, "email attempt failed", "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})

	return attempts, err
}

func (s *Usecase) saveDelivery(ctx context.Context, key string, in emailInput, attempts int32, sendErr error) {
	d := entity.Delivery{
		ID:             s.uid.Generate(),
		IdempotencyKey: key,
		Kind:           in.Kind,
		Recipient:      in.Data.Email,
		Status:         entity.StatusSent,
		Attempts:       attempts,
		CreatedAt:      s.clock.Now(),
	}
	if sendErr != nil {
		d.Status = entity.StatusFailed
		d.LastError = sendErr.Error()
	}

	if err := s.repoDB.SaveDelivery(ctx, d); err != nil {
		slog.ErrorContext(ctx, "failed to repo save email delivery", "key", key, "status", d.Status.String(), "error", err)
	}
}
