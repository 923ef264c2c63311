package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
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
)

const testConfig = `
app:
  url: http://app.test
modules:
  auth:
    verification_ttl_minutes: 10
    email_cooldown_seconds: 60
`

type memRepo struct {
	mu            sync.Mutex
	users         map[int64]*entity.User
	verifications []*entity.Verification
	roles         map[int64]string
	errGet        error
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[int64]*entity.User{}, roles: map[int64]string{}}
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errGet != nil {
		return nil, m.errGet
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errGet != nil {
		return nil, m.errGet
	}
	u, ok := m.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetOpenVerificationByCodeHash(_ context.Context, codeHash string, p entity.Purpose, now time.Time) (*entity.Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.verifications) - 1; i >= 0; i-- {
		v := m.verifications[i]
		if v.CodeHash == codeHash && v.Purpose == p && v.UsedAt == nil && !v.Expired(now) {
			cp := *v
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memRepo) GetLatestOpenVerification(_ context.Context, userID int64, p entity.Purpose) (*entity.Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.verifications) - 1; i >= 0; i-- {
		v := m.verifications[i]
		if v.UserID == userID && v.Purpose == p && v.UsedAt == nil {
			cp := *v
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memRepo) NewRegistration(ctx context.Context, user entity.User, v entity.Verification, role string) error {
	m.mu.Lock()
	for _, u := range m.users {
		if u.Email == user.Email {
			m.mu.Unlock()
			return goerror.ErrConflict
		}
	}
	m.users[user.ID] = &user
	m.roles[user.ID] = role
	m.mu.Unlock()

	return m.IssueVerification(ctx, v, 0)
}

func (m *memRepo) IssueVerification(_ context.Context, v entity.Verification, cooldown time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *entity.Verification
	for _, old := range m.verifications {
		if old.UserID == v.UserID && old.Purpose == v.Purpose {
			if latest == nil || old.CreatedAt.After(latest.CreatedAt) {
				latest = old
			}
		}
	}
	if latest != nil && cooldown > 0 {
		if elapsed := v.CreatedAt.Sub(latest.CreatedAt); elapsed < cooldown {
			return &entity.ErrCooldown{Remaining: cooldown - elapsed}
		}
	}

	for _, old := range m.verifications {
		if old.UserID == v.UserID && old.Purpose == v.Purpose && old.UsedAt == nil {
			at := v.CreatedAt
			old.UsedAt = &at
		}
	}

	cp := v
	m.verifications = append(m.verifications, &cp)
	return nil
}

func (m *memRepo) use(id int64, at time.Time) (*entity.Verification, error) {
	for _, v := range m.verifications {
		if v.ID == id {
			if v.UsedAt != nil {
				return nil, goerror.ErrNotFound
			}
			v.UsedAt = &at
			return v, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memRepo) UseVerification(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.use(id, at)
	return err
}

func (m *memRepo) VerifyUserEmail(_ context.Context, userID, verificationID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.use(verificationID, at); err != nil {
		return err
	}
	m.users[userID].EmailVerifiedAt = &at
	return nil
}

func (m *memRepo) ResetUserPassword(_ context.Context, userID, verificationID int64, passwordHash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.use(verificationID, at); err != nil {
		return err
	}
	m.users[userID].PasswordHash = passwordHash
	return nil
}

func (m *memRepo) open(userID int64, p entity.Purpose) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.verifications {
		if v.UserID == userID && v.Purpose == p && v.UsedAt == nil {
			n++
		}
	}
	return n
}

type memMessaging struct {
	mu     sync.Mutex
	verify []EmailVerificationEvent
	otps   []LoginOTPEvent
	resets []PasswordResetEvent
	err    error
}

func (m *memMessaging) PublishEmailVerification(_ context.Context, msg EmailVerificationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verify = append(m.verify, msg)
	return m.err
}

func (m *memMessaging) PublishLoginOTP(_ context.Context, msg LoginOTPEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps = append(m.otps, msg)
	return m.err
}

func (m *memMessaging) PublishPasswordReset(_ context.Context, msg PasswordResetEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, msg)
	return m.err
}

type memEnforcer struct {
	roles map[string][]string
	perms map[string][][]string
	err   error
}

func newMemEnforcer() *memEnforcer {
	return &memEnforcer{
		roles: map[string][]string{},
		perms: map[string][][]string{
			entity.RoleAdmin: {{entity.RoleAdmin, "*", "*"}},
			entity.RoleUsers: {{entity.RoleUsers, "profiles", "read"}, {entity.RoleUsers, "profiles", "update"}},
		},
	}
}

func (e *memEnforcer) Enforce(rvals ...any) (bool, error) {
	if e.err != nil {
		return false, e.err
	}
	sub, obj, act := rvals[0].(string), rvals[1].(string), rvals[2].(string)
	for _, role := range e.roles[sub] {
		for _, p := range e.perms[role] {
			if (p[1] == "*" || p[1] == obj) && (p[2] == "*" || p[2] == act) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (e *memEnforcer) AddRoleForUser(user, role string, _ ...string) (bool, error) {
	e.roles[user] = append(e.roles[user], role)
	return true, nil
}

func (e *memEnforcer) GetImplicitPermissionsForUser(user string, _ ...string) ([][]string, error) {
	if e.err != nil {
		return nil, e.err
	}
	var out [][]string
	for _, role := range e.roles[user] {
		out = append(out, e.perms[role]...)
	}
	return out, nil
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return 1000 + s.n
}

type seqToken struct {
	mu sync.Mutex
	n  int
}

func (s *seqToken) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "token-" + strconv.Itoa(s.n)
}

type harness struct {
	uc       *Usecase
	repo     *memRepo
	msg      *memMessaging
	enforcer *memEnforcer
	clock    *clock.Manual
	jwt      *jwt.HS512
	bcrypt   hash.Hash
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	clk := clock.NewManual(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "authflow",
		Audiences: []string{"authflow-api"},
		TTL: map[jwt.TokenType]time.Duration{
			jwt.TypeOTPVerification: 10 * time.Minute,
			jwt.TypeAccess:          15 * time.Minute,
			jwt.TypeRefresh:         7 * 24 * time.Hour,
		},
		Clock: clk,
		UUID:  uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	h := &harness{
		repo:     newMemRepo(),
		msg:      &memMessaging{},
		enforcer: newMemEnforcer(),
		clock:    clk,
		jwt:      signer,
		bcrypt:   hash.NewBcrypt(4, "pepper"),
	}

	h.uc = New(Dependency{
		RepoDB:        h.repo,
		RepoMessaging: h.msg,
		Validator:     v,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256("hmac-secret"),
		Bcrypt:        h.bcrypt,
		Argon2ID: hash.NewArgon2idWithParams(hash.Argon2Params{
			MemoryKiB: 64, Iterations: 1, Parallelism: 1, SaltLen: 8, KeyLen: 16,
		}, "pepper"),
		UID:        &seqID{},
		UUID:       uid.NewUUID(),
		Token:      &seqToken{},
		LoginOTP:   otp.Fixed("000000"),
		ResendOTP:  otp.Fixed("000001"),
		Clock:      clk,
		JWT:        signer,
		Instrument: instrument.NewNoop(),
		Enforcer:   h.enforcer,
	})

	return h
}

// verifiedUser registers and verifies an account.
func (h *harness) verifiedUser(t *testing.T, email, password string) int64 {
	t.Helper()
	ctx := context.Background()

	out, err := h.uc.Register(ctx, RegisterInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	token := tokenFromLink(h.msg.verify[len(h.msg.verify)-1].Link)
	if err := h.uc.VerifyEmail(ctx, VerifyEmailInput{Token: token}); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	return out.ID
}

func tokenFromLink(link string) string {
	_, token, _ := strings.Cut(link, "?token=")
	return token
}

func assertCode(t *testing.T, err error, want goerror.Code, wantMsg string) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Code() != want {
		t.Fatalf("code = %s, want %s (msg %q)", gerr.Code(), want, gerr.Msg())
	}
	if wantMsg != "" && gerr.Msg() != wantMsg {
		t.Fatalf("msg = %q, want %q", gerr.Msg(), wantMsg)
	}
}

func asError(err error, target **goerror.Error) bool {
	return errors.As(err, target)
}
