// Package messaging is a small broker neutral publish/consume API with NATS,
// NSQ, Kafka, Google Pub/Sub and in-memory drivers.
//
// Handlers ack by returning nil. A returned error asks the broker for a
// redelivery where the driver supports it.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/authflow/internal/pkg/stacktrace"
)

var (
	ErrTopicRequired   = errors.New("messaging: topic is required")
	ErrHandlerRequired = errors.New("messaging: handler is required")
	ErrGroupRequired   = errors.New("messaging: consumer group is required")
	ErrClosed          = errors.New("messaging: client closed")
)

type Messaging interface {
	io.Closer
	Publish(ctx context.Context, topic string, msg *Message) error
	// Consume blocks until ctx ends or the subscription fails.
	Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error
}

// Message is used both for publishing and for delivery.
type Message struct {
	// ID is assigned by the broker on delivery when it has one.
	ID      string
	Topic   string
	Key     []byte
	Body    []byte
	Headers map[string]string
}

func (m *Message) Header(key string) string {
	if m == nil || m.Headers == nil {
		return ""
	}
	return m.Headers[key]
}

func (m *Message) SetHeader(key, value string) {
	if m.Headers == nil {
		m.Headers = make(map[string]string, 1)
	}
	m.Headers[key] = value
}

type Handler func(ctx context.Context, msg *Message) error

type consumeOptions struct {
	group       string
	concurrency int
	maxInFlight int
}

type ConsumeOption func(*consumeOptions)

// WithGroup names the consumer group: the NSQ channel, NATS queue group,
// Kafka group id or Pub/Sub subscription.
func WithGroup(name string) ConsumeOption {
	return func(o *consumeOptions) { o.group = name }
}

func WithConcurrency(n int) ConsumeOption {
	return func(o *consumeOptions) { o.concurrency = n }
}

func WithMaxInFlight(n int) ConsumeOption {
	return func(o *consumeOptions) { o.maxInFlight = n }
}

func newConsumeOptions(opts []ConsumeOption) consumeOptions {
	co := consumeOptions{concurrency: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	co.concurrency = max(co.concurrency, 1)
	if co.maxInFlight < co.concurrency {
		co.maxInFlight = co.concurrency
	}
	return co
}

func validateConsume(topic string, h Handler) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if h == nil {
		return ErrHandlerRequired
	}
	return nil
}

// dispatch runs h and turns a panic into an error.
func dispatch(ctx context.Context, driver string, h Handler, msg *Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in message handler",
				"driver", driver,
				"topic", msg.Topic,
				"panic", rvr,
				"stack", stacktrace.InternalPaths(debug.Stack()),
			)
			err = fmt.Errorf("messaging: %s handler panic: %v", driver, rvr)
		}
	}()

	return h(ctx, msg)
}
