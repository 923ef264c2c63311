package mail

import (
	"context"
	"log/slog"
)

// Log writes messages to the logger instead of delivering them. Selected with
// mail.driver=log for local runs.
type Log struct{}

func (Log) Send(ctx context.Context, msg Message) error {
	if len(msg.recipients()) == 0 {
		return ErrNoRecipients
	}
	slog.InfoContext(ctx, "mail not delivered, log driver", "to", msg.To, "subject", msg.Subject, "text", msg.TextBody)
	return nil
}

func (Log) Close() error {
	return nil
}
