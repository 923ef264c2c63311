package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
)

var ErrNATSURLRequired = errors.New("messaging: nats url is required")

type NATSConfig struct {
	URL     string
	Name    string
	Options []nats.Option
}

// NATS uses core NATS queue subscriptions. Core NATS has no redelivery, so a
// failed handler is only logged.
type NATS struct {
	conn *nats.Conn
}

func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	opts := append([]nats.Option{nats.Name(cfg.Name), nats.MaxReconnects(-1)}, cfg.Options...)
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

func (n *NATS) Publish(ctx context.Context, topic string, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	nm := nats.NewMsg(topic)
	nm.Data = msg.Body
	for k, v := range msg.Headers {
		nm.Header.Set(k, v)
	}
	if msg.ID != "" {
		nm.Header.Set(nats.MsgIdHdr, msg.ID)
	}

	if err := n.conn.PublishMsg(nm); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("messaging: nats flush: %w", err)
	}
	return nil
}

func (n *NATS) Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error {
	if err := validateConsume(topic, h); err != nil {
		return err
	}
	co := newConsumeOptions(opts)

	queue := make(chan *nats.Msg, co.maxInFlight)
	sub, err := n.conn.QueueSubscribe(topic, co.group, func(m *nats.Msg) {
		select {
		case queue <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case m := <-queue:
					if err := dispatch(ctx, DriverNATS, h, fromNATS(m)); err != nil {
						slog.WarnContext(ctx, "nats message handler failed", "topic", topic, "error", err)
					}
				}
			}
		})
	}

	<-ctx.Done()
	uerr := sub.Unsubscribe()
	wg.Wait()

	if errors.Is(uerr, nats.ErrConnectionClosed) {
		uerr = nil
	}
	return errors.Join(ctx.Err(), uerr)
}

func fromNATS(m *nats.Msg) *Message {
	msg := &Message{Topic: m.Subject, Body: m.Data}
	for k := range m.Header {
		msg.SetHeader(k, m.Header.Get(k))
	}
	msg.ID = m.Header.Get(nats.MsgIdHdr)
	return msg
}

func (n *NATS) Close() error {
	err := n.conn.Drain()
	n.conn.Close()
	return err
}
