package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
)

type VerifyOTPInput struct {
	OTP    string `json:"otp" validate:"required,otp"`
	UserID int64  `json:"-"`
	Token  string `json:"-"`
}

type VerifyOTPOutput struct {
	ID     int64
	Email  string
	Tokens entity.TokenPair
}

func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	in.OTP = strings.TrimSpace(in.OTP)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.otpClaims(ctx, in.Token, in.UserID, "Unauthorized OTP verification"); err != nil {
		return nil, err
	}

	v, err := s.repoDB.GetLatestOpenVerification(ctx, in.UserID, entity.PurposeLogin)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login otp not found", "user_id", in.UserID)
		return nil, goerror.NewBusiness("OTP not found", goerror.CodeBadRequest)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get latest verification", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	if v.Expired(now) {
		slog.WarnContext(ctx, "login otp expired", "user_id", in.UserID, "verification_id", v.ID)
		return nil, goerror.NewBusiness("OTP expired", goerror.CodeGone)
	}

	if !s.argon2id.Verify(v.CodeHash, in.OTP) {
		slog.WarnContext(ctx, "login otp mismatch", "user_id", in.UserID)
		return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeForbidden)
	}

	err = s.repoDB.UseVerification(ctx, v.ID, now)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login otp used concurrently", "user_id", in.UserID, "verification_id", v.ID)
		return nil, goerror.NewBusiness("OTP not found", goerror.CodeBadRequest)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo use verification", "verification_id", v.ID, "error", err)
		return nil, goerror.NewServer(err)
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

	tokens, err := s.issueTokens(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &VerifyOTPOutput{ID: user.ID, Email: user.Email, Tokens: *tokens}, nil
}
