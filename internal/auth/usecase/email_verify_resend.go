package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
)

type ResendEmailVerificationInput struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *Usecase) ResendEmailVerification(ctx context.Context, in ResendEmailVerificationInput) error {
	ctx, span := s.startSpan(ctx, "ResendEmailVerification")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", in.Email)
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if user.Verified() {
		return goerror.NewBusiness("Email already verified", goerror.CodeBadRequest)
	}

	v, token, err := s.newLinkVerification(user.ID, entity.PurposeVerifyEmail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create verification token", "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoDB.IssueVerification(ctx, v, s.emailCooldown()); err != nil {
		if cdErr := cooldownError(err, "verification email"); cdErr != nil {
			slog.WarnContext(ctx, "verification email on cooldown", "user_id", user.ID)
			return cdErr
		}
		slog.ErrorContext(ctx, "failed to repo issue verification", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishEmailVerification(ctx, EmailVerificationEvent{
		EventID: s.uuid.Generate(),
		UserID:  user.ID,
		Email:   user.Email,
		Link:    s.link("/verify-email", token),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish email verification", "user_id", user.ID, "error", err)
	}

	return nil
}
