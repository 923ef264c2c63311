package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/authflow/internal/notification/entity"
)

type ConsumeLoginOTPInput struct {
	EventID    string `validate:"required"`
	UserID     int64  `validate:"required,gt=0"`
	Email      string `validate:"required,email"`
	OTP        string `validate:"required,numeric"`
	TTLMinutes int    `validate:"gte=0"`
}

func (s *Usecase) ConsumeLoginOTP(ctx context.Context, in ConsumeLoginOTPInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeLoginOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	data := s.baseTemplateData(in.Email)
	data.OTP = in.OTP
	data.TTLMinutes = in.TTLMinutes

	return s.sendEmail(ctx, emailInput{
		EventID: in.EventID,
		UserID:  in.UserID,
		Kind:    entity.KindLoginOTP,
		Data:    data,
	})
}
