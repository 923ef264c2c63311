package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
)

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword answers the same way whether or not the email exists.
func (s *Usecase) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	ctx, span := s.startSpan(ctx, "ForgotPassword")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "forgot password for unknown email", "email", in.Email)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	v, token, err := s.newLinkVerification(user.ID, entity.PurposeResetPassword)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create reset token", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.IssueVerification(ctx, v, s.emailCooldown()); err != nil {
		if cdErr := cooldownError(err, "password reset"); cdErr != nil {
			slog.WarnContext(ctx, "password reset on cooldown", "user_id", user.ID)
			return cdErr
		}
		slog.ErrorContext(ctx, "failed to repo issue verification", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishPasswordReset(ctx, PasswordResetEvent{
		EventID: s.uuid.Generate(),
		UserID:  user.ID,
		Email:   user.Email,
		Link:    s.link("/reset-password", token),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish password reset", "user_id", user.ID, "error", err)
	}

	return nil
}
