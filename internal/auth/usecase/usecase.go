package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/clock"
	"github.com/shandysiswandi/authflow/internal/pkg/config"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/hash"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
	"github.com/shandysiswandi/authflow/internal/pkg/otp"
	"github.com/shandysiswandi/authflow/internal/pkg/uid"
	"github.com/shandysiswandi/authflow/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type EmailVerificationEvent struct {
	EventID string
	UserID  int64
	Email   string
	Link    string
}

type LoginOTPEvent struct {
	EventID string
	UserID  int64
	Email   string
	OTP     string
	TTL     time.Duration
}

type PasswordResetEvent struct {
	EventID string
	UserID  int64
	Email   string
	Link    string
}

type repoMessaging interface {
	PublishEmailVerification(ctx context.Context, msg EmailVerificationEvent) error
	PublishLoginOTP(ctx context.Context, msg LoginOTPEvent) error
	PublishPasswordReset(ctx context.Context, msg PasswordResetEvent) error
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetOpenVerificationByCodeHash(ctx context.Context, codeHash string, p entity.Purpose, now time.Time) (*entity.Verification, error)
	GetLatestOpenVerification(ctx context.Context, userID int64, p entity.Purpose) (*entity.Verification, error)

	// NewRegistration stores the user, its role grant and the first
	// VERIFY_EMAIL record atomically. goerror.ErrConflict on duplicate email.
	NewRegistration(ctx context.Context, user entity.User, v entity.Verification, role string) error

	// IssueVerification supersedes open records of v.Purpose and stores v,
	// unless one was issued less than cooldown before v.CreatedAt, in which
	// case *entity.ErrCooldown is returned.
	IssueVerification(ctx context.Context, v entity.Verification, cooldown time.Duration) error

	// UseVerification marks an open record used. goerror.ErrNotFound when
	// it was already used.
	UseVerification(ctx context.Context, id int64, at time.Time) error
	VerifyUserEmail(ctx context.Context, userID, verificationID int64, at time.Time) error
	ResetUserPassword(ctx context.Context, userID, verificationID int64, passwordHash string, at time.Time) error
}

// enforcer is the part of *casbin.Enforcer the flows need.
type enforcer interface {
	Enforce(rvals ...any) (bool, error)
	AddRoleForUser(user string, role string, domain ...string) (bool, error)
	GetImplicitPermissionsForUser(user string, domain ...string) ([][]string, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	bcrypt        hash.Hash
	argon2id      hash.Hash
	uid           uid.NumberID
	uuid          uid.StringID
	token         uid.StringID
	loginOTP      otp.Passcode
	resendOTP     otp.Passcode
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	enforcer      enforcer
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Bcrypt        hash.Hash
	Argon2ID      hash.Hash
	UID           uid.NumberID
	UUID          uid.StringID
	Token         uid.StringID
	LoginOTP      otp.Passcode
	ResendOTP     otp.Passcode
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Enforcer      enforcer
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		bcrypt:        dep.Bcrypt,
		argon2id:      dep.Argon2ID,
		uid:           dep.UID,
		uuid:          dep.UUID,
		token:         dep.Token,
		loginOTP:      dep.LoginOTP,
		resendOTP:     dep.ResendOTP,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) verificationTTL() time.Duration {
	return s.cfg.GetMinute("modules.auth.verification_ttl_minutes")
}

func (s *Usecase) emailCooldown() time.Duration {
	return s.cfg.GetSecond("modules.auth.email_cooldown_seconds")
}

// newLinkVerification creates a record for an emailed link and returns it
// with the plain token that goes into the link.
func (s *Usecase) newLinkVerification(userID int64, p entity.Purpose) (entity.Verification, string, error) {
	token := s.token.Generate()
	sum, err := s.hmac.Hash(token)
	if err != nil {
		return entity.Verification{}, "", err
	}

	now := s.clock.Now()
	return entity.Verification{
		ID:        s.uid.Generate(),
		UserID:    userID,
		Purpose:   p,
		CodeHash:  string(sum),
		CreatedAt: now,
		ExpiresAt: now.Add(s.verificationTTL()),
	}, token, nil
}

// newOTPVerification creates a LOGIN record holding the argon2id hash of a
// fresh code from gen.
func (s *Usecase) newOTPVerification(userID int64, gen otp.Passcode) (entity.Verification, string, error) {
	now := s.clock.Now()
	code, err := gen.Generate(now)
	if err != nil {
		return entity.Verification{}, "", err
	}

	sum, err := s.argon2id.Hash(code)
	if err != nil {
		return entity.Verification{}, "", err
	}

	return entity.Verification{
		ID:        s.uid.Generate(),
		UserID:    userID,
		Purpose:   entity.PurposeLogin,
		CodeHash:  string(sum),
		CreatedAt: now,
		ExpiresAt: now.Add(s.verificationTTL()),
	}, code, nil
}

func (s *Usecase) link(path, token string) string {
	return s.cfg.GetString("app.url") + path + "?token=" + token
}

// cooldownError converts *entity.ErrCooldown into the 429 business error.
// It returns nil for any other error.
func cooldownError(err error, what string) error {
	var cd *entity.ErrCooldown
	if !errors.As(err, &cd) {
		return nil
	}

	wait := cd.WaitSeconds()
	return goerror.NewBusinessData(
		"Please wait "+strconv.FormatInt(wait, 10)+" seconds before requesting another "+what,
		goerror.CodeTooManyRequest,
		map[string]int64{"waitTime": wait},
	)
}

// issueTokens signs an access and refresh pair.
func (s *Usecase) issueTokens(ctx context.Context, userID int64, email string) (*entity.TokenPair, error) {
	access, err := s.jwt.Generate(jwt.TypeAccess, userID, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	refresh, err := s.jwt.Generate(jwt.TypeRefresh, userID, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate refresh token", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &entity.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// otpClaims checks that token is a live otp_verification token issued to
// userID. Failures carry the message prefix of the calling flow.
func (s *Usecase) otpClaims(ctx context.Context, token string, userID int64, unauthorizedMsg string) (*jwt.Claims, error) {
	clm, err := s.jwt.Verify(token)
	if err != nil {
		slog.WarnContext(ctx, "otp token rejected", "error", err)
		return nil, goerror.NewBusiness("Invalid or expired OTP token", goerror.CodeUnauthorized)
	}

	if clm.Type != jwt.TypeOTPVerification || clm.UserID != userID {
		slog.WarnContext(ctx, "otp token does not match caller", "user_id", userID, "token_type", clm.Type)
		return nil, goerror.NewBusiness(unauthorizedMsg, goerror.CodeForbidden)
	}

	return clm, nil
}

func subject(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
