package inbound

import (
	"github.com/shandysiswandi/authflow/internal/auth/usecase"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
	"github.com/shandysiswandi/authflow/internal/pkg/router"
)

// HTTPEndpoint exposes the auth flows over JSON.
type HTTPEndpoint struct {
	uc uc
}

// Register creates an account and mails a verification link.
// @Summary Register account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Register payload"
// @Success 201 {object} router.Envelope{data=RegisterResponse}
// @Failure 400 {object} router.Envelope "Validation error"
// @Failure 409 {object} router.Envelope "Email already registered"
// @Router /api/auth/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{ID: resp.ID, Email: resp.Email}, nil
}

// VerifyEmail consumes an emailed verification token.
// @Summary Verify email
// @Tags Auth
// @Param request body VerifyEmailRequest true "Verification token"
// @Success 200 {object} router.Envelope
// @Failure 400 {object} router.Envelope "Invalid or expired verification token"
// @Router /api/auth/verify-email [post]
func (h *HTTPEndpoint) VerifyEmail(r *router.Request) (any, error) {
	var req VerifyEmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.VerifyEmail(r.Context(), usecase.VerifyEmailInput{Token: req.Token}); err != nil {
		return nil, err
	}

	return VerifyEmailResponse{}, nil
}

// ResendEmailVerification issues a new verification link.
// @Summary Resend verification email
// @Tags Auth
// @Param request body ResendEmailVerificationRequest true "Email"
// @Success 200 {object} router.Envelope
// @Failure 404 {object} router.Envelope "User not found"
// @Failure 429 {object} router.Envelope{data=object} "Cooldown active, data.waitTime in seconds"
// @Router /api/auth/resend-email-verification [post]
func (h *HTTPEndpoint) ResendEmailVerification(r *router.Request) (any, error) {
	var req ResendEmailVerificationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ResendEmailVerification(r.Context(), usecase.ResendEmailVerificationInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return ResendEmailVerificationResponse{}, nil
}

// Login checks credentials and mails an OTP.
// @Summary Login
// @Tags Auth
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} router.Envelope{data=LoginResponse}
// @Failure 400 {object} router.Envelope "Email not verified"
// @Failure 401 {object} router.Envelope "Invalid credentials"
// @Router /api/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{Token: VerifyOTPTokenData{VerifyOTPToken: resp.VerifyOTPToken}}, nil
}

// VerifyOTP exchanges the mailed OTP for an access and refresh token.
// @Summary Verify login OTP
// @Tags Auth
// @Security BearerAuth
// @Param request body VerifyOTPRequest true "OTP"
// @Success 200 {object} router.Envelope{data=VerifyOTPResponse}
// @Failure 403 {object} router.Envelope "Invalid OTP"
// @Failure 410 {object} router.Envelope "OTP expired"
// @Router /api/auth/verify-otp [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		OTP:    req.OTP,
		UserID: clm.UserID,
		Token:  r.BearerToken(),
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{
		ID:    resp.ID,
		Email: resp.Email,
		Token: TokenData{
			AccessToken:  resp.Tokens.AccessToken,
			RefreshToken: resp.Tokens.RefreshToken,
		},
	}, nil
}

// ResendOTP mails a fresh OTP and returns a new otp_verification token.
// @Summary Resend login OTP
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} router.Envelope{data=ResendOTPResponse}
// @Failure 429 {object} router.Envelope{data=object} "Cooldown active"
// @Router /api/auth/resend-otp [post]
func (h *HTTPEndpoint) ResendOTP(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	resp, err := h.uc.ResendOTP(r.Context(), usecase.ResendOTPInput{
		UserID: clm.UserID,
		Token:  r.BearerToken(),
	})
	if err != nil {
		return nil, err
	}

	return ResendOTPResponse{Token: VerifyOTPTokenData{VerifyOTPToken: resp.VerifyOTPToken}}, nil
}

// RefreshToken rotates the token pair.
// @Summary Refresh tokens
// @Tags Auth
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} router.Envelope{data=RefreshTokenResponse}
// @Failure 401 {object} router.Envelope "Invalid or expired refresh token"
// @Failure 403 {object} router.Envelope "Invalid token type"
// @Router /api/auth/refresh [post]
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	var req RefreshTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return nil, err
	}

	return RefreshTokenResponse{Token: TokenData{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}}, nil
}

// ForgotPassword mails a reset link when the account exists.
// @Summary Forgot password
// @Tags Auth
// @Param request body ForgotPasswordRequest true "Email"
// @Success 200 {object} router.Envelope
// @Failure 429 {object} router.Envelope{data=object} "Cooldown active"
// @Router /api/auth/forgot-password [post]
func (h *HTTPEndpoint) ForgotPassword(r *router.Request) (any, error) {
	var req ForgotPasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ForgotPassword(r.Context(), usecase.ForgotPasswordInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return ForgotPasswordResponse{}, nil
}

// ResetPassword sets a new password from a reset token.
// @Summary Reset password
// @Tags Auth
// @Param request body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} router.Envelope
// @Failure 401 {object} router.Envelope "Invalid or expired token"
// @Router /api/auth/reset-password [post]
func (h *HTTPEndpoint) ResetPassword(r *router.Request) (any, error) {
	var req ResetPasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ResetPassword(r.Context(), usecase.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return ResetPasswordResponse{}, nil
}

// UserProfile returns the caller's account. Needs users:read.
// @Summary Current user
// @Tags Profile
// @Security BearerAuth
// @Success 200 {object} router.Envelope{data=UserProfileResponse}
// @Failure 403 {object} router.Envelope "Forbidden: no permission"
// @Router /api/user [get]
func (h *HTTPEndpoint) UserProfile(r *router.Request) (any, error) {
	resp, err := h.uc.UserProfile(r.Context())
	if err != nil {
		return nil, err
	}

	return UserProfileResponse{ID: resp.ID, Email: resp.Email, CreatedAt: resp.CreatedAt}, nil
}

// ProfilePermissions lists the caller's effective permissions.
// @Summary Current permissions
// @Tags Profile
// @Security BearerAuth
// @Success 200 {object} router.Envelope{data=ProfilePermissionsResponse}
// @Router /api/profile/permissions [get]
func (h *HTTPEndpoint) ProfilePermissions(r *router.Request) (any, error) {
	resp, err := h.uc.ProfilePermissions(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfilePermissionsResponse(resp), nil
}
