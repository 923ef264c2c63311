package auth

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	pqotp "github.com/pquerna/otp"
	"github.com/shandysiswandi/authflow/internal/auth/inbound"
	"github.com/shandysiswandi/authflow/internal/auth/outbound/db"
	"github.com/shandysiswandi/authflow/internal/auth/outbound/mq"
	"github.com/shandysiswandi/authflow/internal/auth/usecase"
	"github.com/shandysiswandi/authflow/internal/pkg/clock"
	"github.com/shandysiswandi/authflow/internal/pkg/config"
	"github.com/shandysiswandi/authflow/internal/pkg/hash"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
	"github.com/shandysiswandi/authflow/internal/pkg/messaging"
	"github.com/shandysiswandi/authflow/internal/pkg/otp"
	"github.com/shandysiswandi/authflow/internal/pkg/router"
	"github.com/shandysiswandi/authflow/internal/pkg/uid"
	"github.com/shandysiswandi/authflow/internal/pkg/validator"
)

const verificationTokenLength = 48

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Argon2ID   hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	loginOTP, resendOTP := passcodes(dep.Config)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Bcrypt:        dep.Bcrypt,
		Argon2ID:      dep.Argon2ID,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Token:         uid.NewToken(verificationTokenLength),
		LoginOTP:      loginOTP,
		ResendOTP:     resendOTP,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

// passcodes returns the login and resend OTP sources. Outside production the
// codes are fixed: 000000 on login and 000001 on resend.
func passcodes(cfg config.Config) (login, resend otp.Passcode) {
	if cfg.GetString("app.env") == "production" {
		t := otp.NewTOTP(cfg.GetString("app.name"), pqotp.DigitsSix)
		return t, t
	}
	return otp.Fixed("000000"), otp.Fixed("000001")
}
