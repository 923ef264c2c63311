package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
)

type VerifyEmailInput struct {
	Token string `json:"verification-token" validate:"required"`
}

func (s *Usecase) VerifyEmail(ctx context.Context, in VerifyEmailInput) error {
	ctx, span := s.startSpan(ctx, "VerifyEmail")
	defer span.End()

	in.Token = strings.TrimSpace(in.Token)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	errInvalid := goerror.NewBusiness("Invalid or expired verification token", goerror.CodeBadRequest)

	sum, err := s.hmac.Hash(in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash verification token", "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	v, err := s.repoDB.GetOpenVerificationByCodeHash(ctx, string(sum), entity.PurposeVerifyEmail, now)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "email verification token not found")
		return errInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get verification", "error", err)
		return goerror.NewServer(err)
	}

	err = s.repoDB.VerifyUserEmail(ctx, v.UserID, v.ID, now)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "email verification token used concurrently", "user_id", v.UserID)
		return errInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo verify user email", "user_id", v.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
