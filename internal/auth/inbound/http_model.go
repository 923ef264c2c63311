package inbound

import (
	"net/http"
	"time"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID    int64  `json:"id,string"`
	Email string `json:"email"`
}

func (RegisterResponse) StatusCode() int { return http.StatusCreated }

func (RegisterResponse) Message() string {
	return "Registration successful. Please verify your email."
}

type VerifyEmailRequest struct {
	Token string `json:"verification-token"`
}

type VerifyEmailResponse struct{}

func (VerifyEmailResponse) Message() string { return "Email verified successfully" }
func (VerifyEmailResponse) Payload() any    { return nil }

type ResendEmailVerificationRequest struct {
	Email string `json:"email"`
}

type ResendEmailVerificationResponse struct{}

func (ResendEmailVerificationResponse) Message() string { return "Verification email sent" }
func (ResendEmailVerificationResponse) Payload() any    { return nil }

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPTokenData struct {
	VerifyOTPToken string `json:"verify_otp_token"`
}

type LoginResponse struct {
	Token VerifyOTPTokenData `json:"token"`
}

func (LoginResponse) Message() string { return "OTP sent to your email" }

type VerifyOTPRequest struct {
	OTP string `json:"otp"`
}

type TokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type VerifyOTPResponse struct {
	ID    int64     `json:"id,string"`
	Email string    `json:"email"`
	Token TokenData `json:"token"`
}

func (VerifyOTPResponse) Message() string { return "Login successful" }

type ResendOTPResponse struct {
	Token VerifyOTPTokenData `json:"token"`
}

func (ResendOTPResponse) Message() string { return "OTP resent to your email" }

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh-token"`
}

type RefreshTokenResponse struct {
	Token TokenData `json:"token"`
}

func (RefreshTokenResponse) Message() string { return "Token refreshed" }

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordResponse struct{}

func (ForgotPasswordResponse) Message() string {
	return "If the email exists, reset instructions have been sent"
}
func (ForgotPasswordResponse) Payload() any { return nil }

type ResetPasswordRequest struct {
	Token       string `json:"verification-token"`
	NewPassword string `json:"new-password"`
}

type ResetPasswordResponse struct{}

func (ResetPasswordResponse) Message() string { return "Password reset successful" }
func (ResetPasswordResponse) Payload() any    { return nil }

type UserProfileResponse struct {
	ID        int64     `json:"id,string"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserProfileResponse) Message() string { return "User retrieved" }

type ProfilePermissionsResponse map[string][]string

func (ProfilePermissionsResponse) Message() string { return "Permissions retrieved" }
