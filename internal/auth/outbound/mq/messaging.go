package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/authflow/internal/auth/usecase"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/messaging"
	"github.com/shandysiswandi/authflow/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishEmailVerification(ctx context.Context, msg usecase.EmailVerificationEvent) error {
	return m.publish(ctx, "PublishEmailVerification", event.EmailVerificationDestination, msg.EventID, msg.UserID,
		event.EmailVerificationMessage{
			EventID: msg.EventID,
			UserID:  msg.UserID,
			Email:   msg.Email,
			Link:    msg.Link,
		})
}

func (m *Messaging) PublishLoginOTP(ctx context.Context, msg usecase.LoginOTPEvent) error {
	return m.publish(ctx, "PublishLoginOTP", event.LoginOTPDestination, msg.EventID, msg.UserID,
		event.LoginOTPMessage{
			EventID: msg.EventID,
			UserID:  msg.UserID,
			Email:   msg.Email,
			OTP:     msg.OTP,
			TTLMin:  int(msg.TTL.Minutes()),
		})
}

func (m *Messaging) PublishPasswordReset(ctx context.Context, msg usecase.PasswordResetEvent) error {
	return m.publish(ctx, "PublishPasswordReset", event.PasswordResetDestination, msg.EventID, msg.UserID,
		event.PasswordResetMessage{
			EventID: msg.EventID,
			UserID:  msg.UserID,
			Email:   msg.Email,
			Link:    msg.Link,
		})
}

// publish keys messages by user id so a partitioned broker keeps one
// user's mails in order.
func (m *Messaging) publish(ctx context.Context, name, topic, eventID string, userID int64, payload any) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, name, trace.WithAttributes(
		attribute.String("messaging.destination.name", topic),
		attribute.String("messaging.message.id", eventID),
	))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	out := &messaging.Message{
		ID:   eventID,
		Key:  []byte(strconv.FormatInt(userID, 10)),
		Body: body,
	}
	out.SetHeader(keyOfCorrelationID, instrument.GetCorrelationID(ctx))

	if err := m.client.Publish(ctx, topic, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
