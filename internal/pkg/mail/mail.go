// Package mail sends transactional email.
package mail

import (
	"context"
	"io"
)

// Message is a provider neutral email.
type Message struct {
	// From overrides the sender configured on the Mail implementation.
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
	// Headers are extra headers such as X-Entity-Ref-ID.
	Headers map[string]string
}

func (m Message) recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Mail delivers messages.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
