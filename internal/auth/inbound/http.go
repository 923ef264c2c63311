package inbound

import (
	"context"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/auth/usecase"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
	"github.com/shandysiswandi/authflow/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	VerifyEmail(ctx context.Context, in usecase.VerifyEmailInput) error
	ResendEmailVerification(ctx context.Context, in usecase.ResendEmailVerificationInput) error

	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)
	ResendOTP(ctx context.Context, in usecase.ResendOTPInput) (*usecase.ResendOTPOutput, error)
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*entity.TokenPair, error)

	ForgotPassword(ctx context.Context, in usecase.ForgotPasswordInput) error
	ResetPassword(ctx context.Context, in usecase.ResetPasswordInput) error

	UserProfile(ctx context.Context) (*usecase.UserProfileOutput, error)
	ProfilePermissions(ctx context.Context) (map[string][]string, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	otpOnly := router.Tokens(jwt.TypeOTPVerification)
	otpOrAccess := router.Tokens(jwt.TypeOTPVerification, jwt.TypeAccess)
	access := router.Tokens(jwt.TypeAccess)

	// Registration
	r.POST("/api/auth/register", router.Public, end.Register)
	r.POST("/api/auth/verify-email", router.Public, end.VerifyEmail)
	r.POST("/api/auth/resend-email-verification", router.Public, end.ResendEmailVerification)

	// Login with emailed OTP
	r.POST("/api/auth/login", router.Public, end.Login)
	r.POST("/api/auth/verify-otp", otpOnly, end.VerifyOTP)
	r.POST("/api/auth/resend-otp", otpOrAccess, end.ResendOTP)
	r.POST("/api/auth/refresh", router.Public, end.RefreshToken)

	// Password
	r.POST("/api/auth/forgot-password", router.Public, end.ForgotPassword)
	r.POST("/api/auth/reset-password", router.Public, end.ResetPassword)

	// Profile
	r.GET("/api/user", access, end.UserProfile)
	r.GET("/api/profile/permissions", access, end.ProfilePermissions)
}
