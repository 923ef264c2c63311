package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/authflow/internal/notification/entity"
)

type ConsumeEmailVerificationInput struct {
	EventID string `validate:"required"`
	UserID  int64  `validate:"required,gt=0"`
	Email   string `validate:"required,email"`
	Link    string `validate:"required,url"`
}

func (s *Usecase) ConsumeEmailVerification(ctx context.Context, in ConsumeEmailVerificationInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeEmailVerification")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	data := s.baseTemplateData(in.Email)
	data.Link = in.Link

	return s.sendEmail(ctx, emailInput{
		EventID: in.EventID,
		UserID:  in.UserID,
		Kind:    entity.KindVerifyEmail,
		Data:    data,
	})
}
