package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/authflow/internal/auth"
	"github.com/shandysiswandi/authflow/internal/notification"
	"github.com/shandysiswandi/authflow/internal/pkg/router"
)

func (a *App) initModules() {
	a.router.GET("/health", router.Public, a.health)

	if err := auth.New(auth.Dependency{
		DBConn:     a.dbConn,
		Enforcer:   a.casbin,
		Router:     a.router,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		UUID:       a.uuid,
		HMAC:       a.hmac,
		Bcrypt:     a.bcrypt,
		Argon2ID:   a.argon2id,
		Clock:      a.clock,
		Validator:  a.validator,
		JWT:        a.jwt,
	}); err != nil {
		slog.Error("failed to init module auth", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			Messaging:   a.messaging,
			Idempotency: a.idemp,
			Mail:        a.mail,
			Goroutine:   a.goroutine,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			Clock:       a.clock,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
