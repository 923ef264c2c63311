package messaging

import (
	"context"
	"fmt"
	"strings"
)

const (
	DriverMemory       = "memory"
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

type Config struct {
	Driver string
	NSQ    NSQConfig
	NATS   NATSConfig
	Kafka  KafkaConfig
	PubSub PubSubConfig
}

func New(ctx context.Context, cfg Config) (Messaging, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverNSQ:
		return NewNSQ(cfg.NSQ)
	case DriverNATS:
		return NewNATS(cfg.NATS)
	case DriverKafka:
		return NewKafka(cfg.Kafka)
	case DriverGooglePubSub:
		return NewPubSub(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("messaging: unknown driver %q", cfg.Driver)
	}
}
