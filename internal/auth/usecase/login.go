package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	VerifyOTPToken string
}

// Login checks the password and mails a login OTP. The caller proves the
// OTP with the returned otp_verification token.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	errCredential := goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized)

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", in.Email)
		return nil, errCredential
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(user.PasswordHash, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, errCredential
	}

	if !user.Verified() {
		slog.WarnContext(ctx, "user account is unverified", "user_id", user.ID)
		return nil, goerror.NewBusiness("Please verify your email before logging in", goerror.CodeBadRequest)
	}

	v, code, err := s.newOTPVerification(user.ID, s.loginOTP)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create login otp", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.IssueVerification(ctx, v, 0); err != nil {
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

	return &LoginOutput{VerifyOTPToken: token}, nil
}
