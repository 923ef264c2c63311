package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/authflow/internal/notification/usecase"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/messaging"
	"github.com/shandysiswandi/authflow/internal/pkg/uid"
	"github.com/shandysiswandi/authflow/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type uc interface {
	ConsumeEmailVerification(ctx context.Context, in usecase.ConsumeEmailVerificationInput) error
	ConsumeLoginOTP(ctx context.Context, in usecase.ConsumeLoginOTPInput) error
	ConsumePasswordReset(ctx context.Context, in usecase.ConsumePasswordResetInput) error
}

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg *messaging.Message) context.Context {
	if cID := msg.Header(keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) EmailVerificationNotification(ctx context.Context, msg *messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "EmailVerificationNotification")
	defer span.End()

	slog.InfoContext(ctx, "consume: email verification notification", "msg_id", msg.ID)

	var payload event.EmailVerificationMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of email verification notification", "msg_id", msg.ID, "error", err)
		return nil
	}

	if err := h.uc.ConsumeEmailVerification(ctx, usecase.ConsumeEmailVerificationInput{
		EventID: payload.EventID,
		UserID:  payload.UserID,
		Email:   payload.Email,
		Link:    payload.Link,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume email verification", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) LoginOTPNotification(ctx context.Context, msg *messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "LoginOTPNotification")
	defer span.End()

	// the body carries the plain OTP, so it is never logged
	slog.InfoContext(ctx, "consume: login otp notification", "msg_id", msg.ID)

	var payload event.LoginOTPMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of login otp notification", "msg_id", msg.ID, "error", err)
		return nil
	}

	if err := h.uc.ConsumeLoginOTP(ctx, usecase.ConsumeLoginOTPInput{
		EventID:    payload.EventID,
		UserID:     payload.UserID,
		Email:      payload.Email,
		OTP:        payload.OTP,
		TTLMinutes: payload.TTLMin,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume login otp", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) PasswordResetNotification(ctx context.Context, msg *messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "PasswordResetNotification")
	defer span.End()

	slog.InfoContext(ctx, "consume: password reset notification", "msg_id", msg.ID)

	var payload event.PasswordResetMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of password reset notification", "msg_id", msg.ID, "error", err)
		return nil
	}

	if err := h.uc.ConsumePasswordReset(ctx, usecase.ConsumePasswordResetInput{
		EventID: payload.EventID,
		UserID:  payload.UserID,
		Email:   payload.Email,
		Link:    payload.Link,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume password reset", "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
