package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
)

type ResetPasswordInput struct {
	Token       string `json:"verification-token" validate:"required"`
	NewPassword string `json:"new-password" validate:"required,password"`
}

func (s *Usecase) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	ctx, span := s.startSpan(ctx, "ResetPassword")
	defer span.End()

	in.Token = strings.TrimSpace(in.Token)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	errInvalid := goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)

	sum, err := s.hmac.Hash(in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash reset token", "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	v, err := s.repoDB.GetOpenVerificationByCodeHash(ctx, string(sum), entity.PurposeResetPassword, now)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "reset token not found")
		return errInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get verification", "error", err)
		return goerror.NewServer(err)
	}

	passwordHash, err := s.bcrypt.Hash(in.NewPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	err = s.repoDB.ResetUserPassword(ctx, v.UserID, v.ID, string(passwordHash), now)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "reset token used concurrently", "user_id", v.UserID)
		return errInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo reset user password", "user_id", v.UserID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
