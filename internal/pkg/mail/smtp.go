package mail

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrSMTPHostPortRequired = errors.New("mail: smtp host and port are required")
	ErrNoRecipients         = errors.New("mail: no recipients")
	ErrNoSender             = errors.New("mail: no sender")
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the default sender, e.g. `"Authflow" <no-reply@authflow.dev>`.
	From string
}

// SMTP sends through net/smtp, one connection per message.
type SMTP struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	s := &SMTP{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from: cfg.From,
		send: smtp.SendMail,
		now:  time.Now,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return s, nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rcpt := msg.recipients()
	if len(rcpt) == 0 {
		return ErrNoRecipients
	}

	from := msg.From
	if from == "" {
		from = s.from
	}
	if from == "" {
		return ErrNoSender
	}

	envelopeFrom := from
	if addr, err := mail.ParseAddress(from); err == nil {
		envelopeFrom = addr.Address
	}

	raw := s.compose(from, msg)
	if err := s.send(s.addr, s.auth, envelopeFrom, rcpt, raw); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	return nil
}

func (s *SMTP) Close() error {
	return nil
}

func (s *SMTP) compose(from string, msg Message) []byte {
	var b strings.Builder

	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}

	header("From", from)
	header("To", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		header("Cc", strings.Join(msg.Cc, ", "))
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", s.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		header(k, msg.Headers[k])
	}

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		boundary := newBoundary()
		header("Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
		b.WriteString("\r\n")
		writePart(&b, boundary, "text/plain", msg.TextBody)
		writePart(&b, boundary, "text/html", msg.HTMLBody)
		b.WriteString("--" + boundary + "--\r\n")
	case msg.HTMLBody != "":
		header("Content-Type", "text/html; charset=UTF-8")
		b.WriteString("\r\n" + msg.HTMLBody)
	default:
		header("Content-Type", "text/plain; charset=UTF-8")
		b.WriteString("\r\n" + msg.TextBody)
	}

	return []byte(b.String())
}

func writePart(b *strings.Builder, boundary, contentType, body string) {
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
}

func newBoundary() string {
	var buf [12]byte
	_, _ = rand.Read(buf[:])
	return "authflow-" + hex.EncodeToString(buf[:])
}
