package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/authflow/internal/pkg/config"
	"github.com/shandysiswandi/authflow/internal/pkg/goroutine"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/messaging"
	"github.com/shandysiswandi/authflow/internal/pkg/uid"
	"github.com/shandysiswandi/authflow/internal/shared/event"
)

type consumer struct {
	name    string
	topic   string // destination where publisher sent message
	handler messaging.Handler
}

func consumers(h *MQHandler) []consumer {
	return []consumer{
		{
			name:    event.EmailVerificationConsumerNotification,
			topic:   event.EmailVerificationDestination,
			handler: h.EmailVerificationNotification,
		},
		{
			name:    event.LoginOTPConsumerNotification,
			topic:   event.LoginOTPDestination,
			handler: h.LoginOTPNotification,
		},
		{
			name:    event.PasswordResetConsumerNotification,
			topic:   event.PasswordResetDestination,
			handler: h.PasswordResetNotification,
		},
	}
}

// RegisterMQConsumer starts one background consumer per name listed in
// modules.notification.consumer_names. It returns how many were started.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) int {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	concurrency := max(cfg.GetInt("modules.notification.concurrency"), 1)

	started := 0
	for _, c := range consumers(mqHandler) {
		if !slices.Contains(enabled, c.name) {
			continue
		}

		ok := routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", c.name, "topic", c.topic)
			return messenger.Consume(pCtx,
				c.topic,
				c.handler,
				messaging.WithGroup(c.name),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
			)
		})
		if ok {
			started++
		}
	}

	return started
}
