package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/authflow/internal/notification/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/clock"
	"github.com/shandysiswandi/authflow/internal/pkg/config"
	"github.com/shandysiswandi/authflow/internal/pkg/idempotency"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/mail"
	"github.com/shandysiswandi/authflow/internal/pkg/validator"
)

const testConfig = `
app:
  name: Authflow
modules:
  notification:
    retry:
      max: 2
      base_ms: 1
`

type memDB struct {
	mu         sync.Mutex
	deliveries map[string]entity.Delivery
}

func (m *memDB) SaveDelivery(_ context.Context, d entity.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.deliveries[d.IdempotencyKey]; ok {
		d.ID = prev.ID
		d.CreatedAt = prev.CreatedAt
		d.Attempts += prev.Attempts
	}
	m.deliveries[d.IdempotencyKey] = d
	return nil
}

type flakyMail struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []mail.Message
}

func (f *flakyMail) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("smtp: 421 service not available")
	}
	f.sent = append(f.sent, msg)
	return nil
}

type seqID struct{ n int64 }

func (s *seqID) Generate() int64 {
	s.n++
	return s.n
}

func newTestUsecase(t *testing.T, m *flakyMail) (*Usecase, *memDB) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := &memDB{deliveries: map[string]entity.Delivery{}}
	uc := NewNotification(Dependency{
		RepoDB:      db,
		RepoMail:    m,
		Idempotency: idempotency.NewRedis(client),
		Config:      cfg,
		UID:         &seqID{},
		Clock:       clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Validator:   v,
		Instrument:  instrument.NewNoop(),
	})

	return uc, db
}

func TestConsumeEmailVerification(t *testing.T) {
	// Arrange
	m := &flakyMail{}
	uc, db := newTestUsecase(t, m)

	// Act
	err := uc.ConsumeEmailVerification(context.Background(), ConsumeEmailVerificationInput{
		EventID: "evt-1",
		UserID:  7,
		Email:   "jane@example.com",
		Link:    "http://app.test/verify-email?token=abc",
	})

	// Assert
	if err != nil {
		t.Fatalf("ConsumeEmailVerification() error = %v", err)
	}
	if len(m.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(m.sent))
	}
	msg := m.sent[0]
	if msg.Subject != "Verify Your Email" || msg.To[0] != "jane@example.com" {
		t.Fatalf("message = %+v", msg)
	}
	if !strings.Contains(msg.HTMLBody, "http://app.test/verify-email?token=abc") {
		t.Fatalf("html body missing link: %s", msg.HTMLBody)
	}
	if !strings.Contains(msg.TextBody, "http://app.test/verify-email?token=abc") {
		t.Fatalf("text body missing link: %s", msg.TextBody)
	}
	if msg.Headers["X-Entity-Ref-ID"] != "evt-1" {
		t.Fatalf("headers = %v", msg.Headers)
	}
	d := db.deliveries[keyPrefixEmail+"evt-1"]
	if d.Status != entity.StatusSent || d.Attempts != 1 || d.Kind != entity.KindVerifyEmail {
		t.Fatalf("delivery = %+v", d)
	}
}

func TestConsumeLoginOTP(t *testing.T) {
	// Arrange
	m := &flakyMail{}
	uc, _ := newTestUsecase(t, m)

	// Act
	err := uc.ConsumeLoginOTP(context.Background(), ConsumeLoginOTPInput{
		EventID:    "evt-2",
		UserID:     7,
		Email:      "jane@example.com",
		OTP:        "123456",
		TTLMinutes: 10,
	})

	// Assert
	if err != nil {
		t.Fatalf("ConsumeLoginOTP() error = %v", err)
	}
	msg := m.sent[0]
	if msg.Subject != "Your OTP Code" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTMLBody, "123456") || !strings.Contains(msg.HTMLBody, "10 minutes") {
		t.Fatalf("html body = %s", msg.HTMLBody)
	}
	if !strings.Contains(msg.TextBody, "Your Authflow login code is 123456") {
		t.Fatalf("text body = %s", msg.TextBody)
	}
}

func TestConsumePasswordReset(t *testing.T) {
	// Arrange
	m := &flakyMail{}
	uc, _ := newTestUsecase(t, m)

	// Act
	err := uc.ConsumePasswordReset(context.Background(), ConsumePasswordResetInput{
		EventID: "evt-3",
		UserID:  7,
		Email:   "jane@example.com",
		Link:    "http://app.test/reset-password?token=xyz",
	})

	// Assert
	if err != nil {
		t.Fatalf("ConsumePasswordReset() error = %v", err)
	}
	if m.sent[0].Subject != "Reset Your Password" {
		t.Fatalf("subject = %q", m.sent[0].Subject)
	}
}

func TestSendEmail_Redelivered(t *testing.T) {
	// Arrange
	m := &flakyMail{}
	uc, _ := newTestUsecase(t, m)
	in := ConsumeLoginOTPInput{EventID: "evt-4", UserID: 7, Email: "jane@example.com", OTP: "000000", TTLMinutes: 10}

	// Act
	first := uc.ConsumeLoginOTP(context.Background(), in)
	second := uc.ConsumeLoginOTP(context.Background(), in)

	// Assert
	if first != nil || second != nil {
		t.Fatalf("errors = %v, %v", first, second)
	}
	if len(m.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(m.sent))
	}
}

func TestSendEmail_RetriesThenSucceeds(t *testing.T) {
	// Arrange
	m := &flakyMail{failures: 2}
	uc, db := newTestUsecase(t, m)

	// Act
	err := uc.ConsumeLoginOTP(context.Background(), ConsumeLoginOTPInput{
		EventID: "evt-5", UserID: 7, Email: "jane@example.com", OTP: "000000", TTLMinutes: 10,
	})

	// Assert
	if err != nil {
		t.Fatalf("ConsumeLoginOTP() error = %v", err)
	}
	if m.calls != 3 {
		t.Fatalf("calls = %d, want 3", m.calls)
	}
	d := db.deliveries[keyPrefixEmail+"evt-5"]
	if d.Status != entity.StatusSent || d.Attempts != 3 {
		t.Fatalf("delivery = %+v", d)
	}
}

func TestSendEmail_ExhaustedThenRedelivered(t *testing.T) {
	// Arrange
	m := &flakyMail{failures: 3}
	uc, db := newTestUsecase(t, m)
	in := ConsumeLoginOTPInput{EventID: "evt-6", UserID: 7, Email: "jane@example.com", OTP: "000000", TTLMinutes: 10}

	// Act
	first := uc.ConsumeLoginOTP(context.Background(), in)
	failed := db.deliveries[keyPrefixEmail+"evt-6"]
	second := uc.ConsumeLoginOTP(context.Background(), in)

	// Assert
	if first == nil {
		t.Fatalf("first error = nil, want send failure")
	}
	if failed.Status != entity.StatusFailed || failed.Attempts != 3 || failed.LastError == "" {
		t.Fatalf("failed delivery = %+v", failed)
	}
	if second != nil {
		t.Fatalf("second error = %v", second)
	}
	d := db.deliveries[keyPrefixEmail+"evt-6"]
	if d.Status != entity.StatusSent || d.Attempts != 4 {
		t.Fatalf("delivery = %+v", d)
	}
}

func TestConsume_InvalidInputDropped(t *testing.T) {
	// Arrange
	m := &flakyMail{}
	uc, db := newTestUsecase(t, m)

	// Act
	err := uc.ConsumeEmailVerification(context.Background(), ConsumeEmailVerificationInput{
		EventID: "evt-7",
		UserID:  7,
		Email:   "not-an-email",
		Link:    "http://app.test/verify-email?token=abc",
	})

	// Assert
	if err != nil {
		t.Fatalf("error = %v, want nil", err)
	}
	if m.calls != 0 || len(db.deliveries) != 0 {
		t.Fatalf("calls = %d, deliveries = %d", m.calls, len(db.deliveries))
	}
}
