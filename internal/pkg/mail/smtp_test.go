package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

type captured struct {
	addr string
	from string
	to   []string
	raw  string
}

func newCapturingSMTP(t *testing.T, out *captured) *SMTP {
	t.Helper()

	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 1025, From: `"Authflow" <no-reply@authflow.dev>`})
	if err != nil {
		t.Fatalf("NewSMTP() error = %v", err)
	}
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		out.addr, out.from, out.to, out.raw = addr, from, to, string(msg)
		return nil
	}
	return s
}

func TestSMTP_SendMultipart(t *testing.T) {
	// Arrange
	var got captured
	s := newCapturingSMTP(t, &got)

	// Act
	err := s.Send(context.Background(), Message{
		To:       []string{"user@example.com"},
		Bcc:      []string{"audit@example.com"},
		Subject:  "Your OTP Code",
		TextBody: "Your OTP is 123456",
		HTMLBody: "<h1>123456</h1>",
		Headers:  map[string]string{"X-Entity-Ref-ID": "evt-1"},
	})

	// Assert
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got.addr != "localhost:1025" || got.from != "no-reply@authflow.dev" {
		t.Fatalf("envelope = %s from %s", got.addr, got.from)
	}
	if len(got.to) != 2 {
		t.Fatalf("recipients = %v", got.to)
	}
	for _, want := range []string{"Subject: Your OTP Code", "multipart/alternative", "text/plain", "text/html", "X-Entity-Ref-ID: evt-1"} {
		if !strings.Contains(got.raw, want) {
			t.Fatalf("message missing %q:\n%s", want, got.raw)
		}
	}
	if strings.Contains(got.raw, "audit@example.com") {
		t.Fatal("bcc must not appear in headers")
	}
}

func TestSMTP_SendValidation(t *testing.T) {
	var got captured
	s := newCapturingSMTP(t, &got)

	if err := s.Send(context.Background(), Message{Subject: "x"}); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("error = %v, want ErrNoRecipients", err)
	}

	s.from = ""
	if err := s.Send(context.Background(), Message{To: []string{"a@b.c"}}); !errors.Is(err, ErrNoSender) {
		t.Fatalf("error = %v, want ErrNoSender", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, Message{To: []string{"a@b.c"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestNewSMTP_RequiresHost(t *testing.T) {
	if _, err := NewSMTP(SMTPConfig{}); !errors.Is(err, ErrSMTPHostPortRequired) {
		t.Fatalf("error = %v", err)
	}
}
