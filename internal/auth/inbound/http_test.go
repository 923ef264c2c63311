package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/auth/usecase"
	"github.com/shandysiswandi/authflow/internal/pkg/clock"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
	"github.com/shandysiswandi/authflow/internal/pkg/router"
	"github.com/shandysiswandi/authflow/internal/pkg/uid"
)

type fakeUC struct {
	registerIn  usecase.RegisterInput
	verifyOTPIn usecase.VerifyOTPInput
	resendOTPIn usecase.ResendOTPInput
	resetIn     usecase.ResetPasswordInput
	err         error
}

func (f *fakeUC) Register(_ context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	f.registerIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.RegisterOutput{ID: 42, Email: in.Email}, nil
}

func (f *fakeUC) VerifyEmail(context.Context, usecase.VerifyEmailInput) error { return f.err }

func (f *fakeUC) ResendEmailVerification(context.Context, usecase.ResendEmailVerificationInput) error {
	return f.err
}

func (f *fakeUC) Login(context.Context, usecase.LoginInput) (*usecase.LoginOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.LoginOutput{VerifyOTPToken: "otp-token"}, nil
}

func (f *fakeUC) VerifyOTP(_ context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error) {
	f.verifyOTPIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.VerifyOTPOutput{
		ID:     in.UserID,
		Email:  "jane@example.com",
		Tokens: entity.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}, nil
}

func (f *fakeUC) ResendOTP(_ context.Context, in usecase.ResendOTPInput) (*usecase.ResendOTPOutput, error) {
	f.resendOTPIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ResendOTPOutput{VerifyOTPToken: "otp-token-2"}, nil
}

func (f *fakeUC) RefreshToken(context.Context, usecase.RefreshTokenInput) (*entity.TokenPair, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entity.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (f *fakeUC) ForgotPassword(context.Context, usecase.ForgotPasswordInput) error { return f.err }

func (f *fakeUC) ResetPassword(_ context.Context, in usecase.ResetPasswordInput) error {
	f.resetIn = in
	return f.err
}

func (f *fakeUC) UserProfile(context.Context) (*usecase.UserProfileOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.UserProfileOutput{ID: 42, Email: "jane@example.com", CreatedAt: time.Unix(0, 0).UTC()}, nil
}

func (f *fakeUC) ProfilePermissions(context.Context) (map[string][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string][]string{"users": {"read"}}, nil
}

func newTestRouter(t *testing.T, f *fakeUC) (*router.Router, *jwt.HS512) {
	t.Helper()

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "authflow",
		Audiences: []string{"authflow-api"},
		TTL: map[jwt.TokenType]time.Duration{
			jwt.TypeOTPVerification: time.Minute,
			jwt.TypeAccess:          time.Minute,
			jwt.TypeRefresh:         time.Hour,
		},
		Clock: clock.New(),
		UUID:  uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	ro := router.NewRouter(router.Config{UUID: uid.NewUUID(), JWT: signer})
	RegisterHTTPEndpoint(ro, f)
	return ro, signer
}

func serve(t *testing.T, ro *router.Router, method, path, body, token string) (*httptest.ResponseRecorder, router.Envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)

	var env router.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return rec, env
}

func TestHTTPEndpoint_Register(t *testing.T) {
	// Arrange
	f := &fakeUC{}
	ro, _ := newTestRouter(t, f)

	// Act
	rec, env := serve(t, ro, http.MethodPost, "/api/auth/register",
		`{"email":"jane@example.com","password":"Secret#123"}`, "")

	// Assert
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if env.Message != "Registration successful. Please verify your email." {
		t.Fatalf("message = %q", env.Message)
	}
	data, _ := env.Data.(map[string]any)
	if data["id"] != "42" || data["email"] != "jane@example.com" {
		t.Fatalf("data = %v", env.Data)
	}
	if f.registerIn.Password != "Secret#123" {
		t.Fatalf("password not forwarded: %+v", f.registerIn)
	}
}

func TestHTTPEndpoint_EmptyDataResponses(t *testing.T) {
	tests := []struct {
		path    string
		body    string
		wantMsg string
	}{
		{"/api/auth/verify-email", `{"verification-token":"t"}`, "Email verified successfully"},
		{"/api/auth/resend-email-verification", `{"email":"jane@example.com"}`, "Verification email sent"},
		{"/api/auth/forgot-password", `{"email":"jane@example.com"}`, "If the email exists, reset instructions have been sent"},
		{"/api/auth/reset-password", `{"verification-token":"t","new-password":"Secret#456"}`, "Password reset successful"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			// Arrange
			ro, _ := newTestRouter(t, &fakeUC{})

			// Act
			rec, env := serve(t, ro, http.MethodPost, tt.path, tt.body, "")

			// Assert
			if rec.Code != http.StatusOK || env.Message != tt.wantMsg {
				t.Fatalf("status = %d, envelope = %+v", rec.Code, env)
			}
			if env.Data != nil {
				t.Fatalf("data = %v, want null", env.Data)
			}
		})
	}
}

func TestHTTPEndpoint_Login(t *testing.T) {
	// Arrange
	ro, _ := newTestRouter(t, &fakeUC{})

	// Act
	rec, env := serve(t, ro, http.MethodPost, "/api/auth/login",
		`{"email":"jane@example.com","password":"Secret#123"}`, "")

	// Assert
	if rec.Code != http.StatusOK || env.Message != "OTP sent to your email" {
		t.Fatalf("status = %d, envelope = %+v", rec.Code, env)
	}
	data, _ := env.Data.(map[string]any)
	tok, _ := data["token"].(map[string]any)
	if tok["verify_otp_token"] != "otp-token" {
		t.Fatalf("data = %v", env.Data)
	}
}

func TestHTTPEndpoint_VerifyOTP(t *testing.T) {
	// Arrange
	f := &fakeUC{}
	ro, signer := newTestRouter(t, f)
	otpToken, err := signer.Generate(jwt.TypeOTPVerification, 42, "jane@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Act
	rec, env := serve(t, ro, http.MethodPost, "/api/auth/verify-otp", `{"otp":"000000"}`, otpToken)

	// Assert
	if rec.Code != http.StatusOK || env.Message != "Login successful" {
		t.Fatalf("status = %d, envelope = %+v", rec.Code, env)
	}
	if f.verifyOTPIn.UserID != 42 || f.verifyOTPIn.Token != otpToken || f.verifyOTPIn.OTP != "000000" {
		t.Fatalf("input = %+v", f.verifyOTPIn)
	}
	data, _ := env.Data.(map[string]any)
	tok, _ := data["token"].(map[string]any)
	if tok["access_token"] != "a" || tok["refresh_token"] != "r" {
		t.Fatalf("data = %v", env.Data)
	}
}

func TestHTTPEndpoint_TokenPolicies(t *testing.T) {
	ro, signer := newTestRouter(t, &fakeUC{})
	gen := func(typ jwt.TokenType) string {
		tok, err := signer.Generate(typ, 42, "jane@example.com")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		return tok
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"verify-otp without token", http.MethodPost, "/api/auth/verify-otp", "", http.StatusUnauthorized},
		{"verify-otp with access", http.MethodPost, "/api/auth/verify-otp", gen(jwt.TypeAccess), http.StatusForbidden},
		{"resend-otp with otp token", http.MethodPost, "/api/auth/resend-otp", gen(jwt.TypeOTPVerification), http.StatusOK},
		{"resend-otp with access", http.MethodPost, "/api/auth/resend-otp", gen(jwt.TypeAccess), http.StatusOK},
		{"user with otp token", http.MethodGet, "/api/user", gen(jwt.TypeOTPVerification), http.StatusForbidden},
		{"user with refresh token", http.MethodGet, "/api/user", gen(jwt.TypeRefresh), http.StatusUnauthorized},
		{"user with access", http.MethodGet, "/api/user", gen(jwt.TypeAccess), http.StatusOK},
		{"permissions with access", http.MethodGet, "/api/profile/permissions", gen(jwt.TypeAccess), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec, _ := serve(t, ro, tt.method, tt.path, `{"otp":"000000"}`, tt.token)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHTTPEndpoint_UsecaseError(t *testing.T) {
	// Arrange
	f := &fakeUC{err: goerror.NewBusinessData(
		"Please wait 30 seconds before requesting another password reset",
		goerror.CodeTooManyRequest,
		map[string]int64{"waitTime": 30},
	)}
	ro, _ := newTestRouter(t, f)

	// Act
	rec, env := serve(t, ro, http.MethodPost, "/api/auth/forgot-password", `{"email":"jane@example.com"}`, "")

	// Assert
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	data, _ := env.Data.(map[string]any)
	if data["waitTime"] != float64(30) {
		t.Fatalf("data = %v", env.Data)
	}
}

func TestHTTPEndpoint_ProfilePermissions(t *testing.T) {
	// Arrange
	ro, signer := newTestRouter(t, &fakeUC{})
	tok, err := signer.Generate(jwt.TypeAccess, 42, "jane@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Act
	_, env := serve(t, ro, http.MethodGet, "/api/profile/permissions", "", tok)

	// Assert
	data, _ := env.Data.(map[string]any)
	acts, _ := data["users"].([]any)
	if len(acts) != 1 || acts[0] != "read" {
		t.Fatalf("data = %v", env.Data)
	}
}
