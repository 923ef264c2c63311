package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/authflow/internal/notification/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/clock"
	"github.com/shandysiswandi/authflow/internal/pkg/config"
	"github.com/shandysiswandi/authflow/internal/pkg/idempotency"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/mail"
	"github.com/shandysiswandi/authflow/internal/pkg/uid"
	"github.com/shandysiswandi/authflow/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	SaveDelivery(ctx context.Context, d entity.Delivery) error
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Usecase struct {
	repoDB      repoDB
	repoMail    repoMail
	idempotency idempotency.Guard
	cfg         config.Config
	uid         uid.NumberID
	clock       clock.Clocker
	validator   validator.Validator
	ins         instrument.Instrumentation
}

type Dependency struct {
	RepoDB      repoDB
	RepoMail    repoMail
	Idempotency idempotency.Guard
	Config      config.Config
	UID         uid.NumberID
	Clock       clock.Clocker
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:      dep.RepoDB,
		repoMail:    dep.RepoMail,
		idempotency: dep.Idempotency,
		cfg:         dep.Config,
		uid:         dep.UID,
		clock:       dep.Clock,
		validator:   dep.Validator,
		ins:         dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

// retryPolicy returns how many extra attempts a failed send gets and the
// first backoff step.
func (s *Usecase) retryPolicy() (uint64, time.Duration) {
	maxRetries := s.cfg.GetInt("modules.notification.retry.max")
	if maxRetries < 0 {
		maxRetries = 0
	}

	base := time.Duration(s.cfg.GetInt64("modules.notification.retry.base_ms")) * time.Millisecond
	if base <= 0 {
		base = 200 * time.Millisecond
	}

	return uint64(maxRetries), base
}

func (s *Usecase) baseTemplateData(email string) templateData {
	return templateData{
		AppName: s.cfg.GetString("app.name"),
		Email:   email,
		Year:    s.clock.Now().Format("2006"),
	}
}
