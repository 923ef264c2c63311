package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
)

type ResendOTPInput struct {
	UserID int64
	Token  string
}

type ResendOTPOutput struct {
	VerifyOTPToken string
}

func (s *Usecase) ResendOTP(ctx context.Context, in ResendOTPInput) (*ResendOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "ResendOTP")
	defer span.End()

	if _, err := s.otpClaims(ctx, in.Token, in.UserID, "Unauthorized OTP resend"); err != nil {
		return nil, err
	}

	user, err := s.repoDB.GetUserByID(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", in.UserID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	v, code, err := s.newOTPVerification(user.ID, s.resendOTP)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create login otp", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.IssueVerification(ctx, v, s.emailCooldown()); err != nil {
		if cdErr := cooldownError(err, "OTP"); cdErr != nil {
			slog.WarnContext(ctx, "login otp on cooldown", "user_id", user.ID)
			return nil, cdErr
		}
		slog.ErrorContext(ctx, "failed to repo issue verification", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(jwt.TypeOTPVerification, user.ID, user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishLoginOTP(ctx, LoginOTPEvent{
		EventID: s.uuid.Generate(),
		UserID:  user.ID,
		Email:   user.Email,
		OTP:     code,
		TTL:     s.verificationTTL(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish login otp", "user_id", user.ID, "error", err)
	}

	return &ResendOTPOutput{VerifyOTPToken: token}, nil
}
