package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

type KafkaConfig struct {
	Brokers  []string
	ClientID string
}

// Kafka commits an offset only after its handler succeeds. A failing
// handler stops the consumer so the message is read again on restart.
type Kafka struct {
	cfg    KafkaConfig
	dialer *kafka.Dialer

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	return &Kafka{
		cfg:     cfg,
		dialer:  &kafka.Dialer{ClientID: cfg.ClientID, Timeout: 10 * time.Second, DualStack: true},
		writers: make(map[string]*kafka.Writer),
	}, nil
}

func (k *Kafka) writer(topic string) *kafka.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()

	if w, ok := k.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	k.writers[topic] = w
	return w
}

func (k *Kafka) Publish(ctx context.Context, topic string, msg *Message) error {
	if topic == "" {
		return ErrTopicRequired
	}

	km := kafka.Message{Key: msg.Key, Value: msg.Body, Time: time.Now()}
	for hk, hv := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: hk, Value: []byte(hv)})
	}

	if err := k.writer(topic).WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}
	return nil
}

func (k *Kafka) Consume(ctx context.Context, topic string, h Handler, opts ...ConsumeOption) error {
	if err := validateConsume(topic, h); err != nil {
		return err
	}
	co := newConsumeOptions(opts)
	if co.group == "" {
		return ErrGroupRequired
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		GroupID:  co.group,
		Topic:    topic,
		Dialer:   k.dialer,
		MaxBytes: 10e6,
	})
	defer func() {
		if err := r.Close(); err != nil {
			slog.WarnContext(ctx, "kafka reader close", "topic", topic, "error", err)
		}
	}()

	// partitions are ordered, so messages are handled one at a time
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("messaging: kafka fetch: %w", err)
		}

		msg := &Message{
			ID:    strconv.Itoa(m.Partition) + "-" + strconv.FormatInt(m.Offset, 10),
			Topic: m.Topic,
			Key:   m.Key,
			Body:  m.Value,
		}
		for _, hd := range m.Headers {
			msg.SetHeader(hd.Key, string(hd.Value))
		}

		if err := dispatch(ctx, DriverKafka, h, msg); err != nil {
			return fmt.Errorf("messaging: kafka handler at offset %d: %w", m.Offset, err)
		}
		if err := r.CommitMessages(ctx, m); err != nil {
			return fmt.Errorf("messaging: kafka commit: %w", err)
		}
	}
}

func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var err error
	for topic, w := range k.writers {
		err = errors.Join(err, w.Close())
		delete(k.writers, topic)
	}
	return err
}
