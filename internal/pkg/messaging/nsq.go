package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	nsq "github.com/nsqio/go-nsq"
)

var (
	ErrNSQAddrRequired   = errors.New("messaging: nsq nsqd address is required")
	ErrNSQLookupRequired = errors.New("messaging: nsq nsqd or lookupd addresses are required")
)

type NSQConfig struct {
	// NSQDAddr receives published messages.
	NSQDAddr string
	// LookupdAddrs is preferred for consumers when set.
	LookupdAddrs []string
	// MaxAttempts bounds redeliveries of a failing message. Zero keeps the
	// go-nsq default.
	MaxAttempts uint16
}

// NSQ carries headers inside a JSON frame because NSQ messages are bodies
// only.
type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer

	mu        sync.Mutex
	consumers []*nsq.Consumer
}

type nsqFrame struct {
	Headers map[string]string `json:"h,omitempty"`
	Key     []byte            `json:"k,omitempty"`
	Body    []byte            `json:"b"`
}

func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.NSQDAddr == "" {
		return nil, ErrNSQAddrRequired
	}

	p, err := nsq.NewProducer(cfg.NSQDAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{cfg: cfg, producer: p}, nil
}

func (n *NSQ) Publish(ctx context.Context, topic string, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	raw, err := encodeNSQ(msg)
	if err != nil {
		return err
	}
	if err := n.producer.Publish(topic, raw); err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}
	return nil
}

func (n *NSQ) Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error {
	if err := validateConsume(topic, h); err != nil {
		return err
	}
	co := newConsumeOptions(opts)
	if co.group == "" {
		return ErrGroupRequired
	}

	ccfg := nsq.NewConfig()
	ccfg.MaxInFlight = co.maxInFlight
	if n.cfg.MaxAttempts > 0 {
		ccfg.MaxAttempts = n.cfg.MaxAttempts
	}

	c, err := nsq.NewConsumer(topic, co.group, ccfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq consumer: %w", err)
	}
	c.SetLoggerLevel(nsq.LogLevelError)

	// a non-nil error makes go-nsq requeue the message
	c.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		msg, err := decodeNSQ(topic, m)
		if err != nil {
			slog.WarnContext(ctx, "nsq message dropped", "topic", topic, "error", err)
			return nil
		}
		return dispatch(ctx, DriverNSQ, h, msg)
	}), co.concurrency)

	if len(n.cfg.LookupdAddrs) > 0 {
		err = c.ConnectToNSQLookupds(n.cfg.LookupdAddrs)
	} else {
		err = c.ConnectToNSQD(n.cfg.NSQDAddr)
	}
	if err != nil {
		c.Stop()
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	n.mu.Lock()
	n.consumers = append(n.consumers, c)
	n.mu.Unlock()

	select {
	case <-ctx.Done():
		c.Stop()
		<-c.StopChan
		return ctx.Err()
	case <-c.StopChan:
		return nil
	}
}

func (n *NSQ) Close() error {
	n.mu.Lock()
	consumers := n.consumers
	n.consumers = nil
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
		<-c.StopChan
	}
	n.producer.Stop()
	return nil
}

func encodeNSQ(msg *Message) ([]byte, error) {
	raw, err := json.Marshal(nsqFrame{Headers: msg.Headers, Key: msg.Key, Body: msg.Body})
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq encode: %w", err)
	}
	return raw, nil
}

func decodeNSQ(topic string, m *nsq.Message) (*Message, error) {
	var f nsqFrame
	if err := json.Unmarshal(m.Body, &f); err != nil {
		return nil, fmt.Errorf("messaging: nsq decode: %w", err)
	}
	return &Message{ID: string(m.ID[:]), Topic: topic, Key: f.Key, Body: f.Body, Headers: f.Headers}, nil
}
