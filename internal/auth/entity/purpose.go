package entity

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Purpose scopes a verification record to one flow.
type Purpose int16

const (
	PurposeUnknown Purpose = 0

	// PurposeVerifyEmail backs the link mailed after registration.
	PurposeVerifyEmail Purpose = 1

	// PurposeLogin holds the hash of the emailed login OTP.
	PurposeLogin Purpose = 2

	// PurposeResetPassword backs the forgot password link.
	PurposeResetPassword Purpose = 3
)

func (p Purpose) String() string {
	switch p {
	case PurposeVerifyEmail:
		return "VERIFY_EMAIL"
	case PurposeLogin:
		return "LOGIN"
	case PurposeResetPassword:
		return "RESET_PASSWORD"
	default:
		return "UNKNOWN"
	}
}

func (p Purpose) Valid() bool {
	return p >= PurposeVerifyEmail && p <= PurposeResetPassword
}

var ErrUnknownPurpose = errors.New("auth: unknown verification purpose")

// ErrCooldown is returned when a record of the same purpose was issued too
// recently.
type ErrCooldown struct {
	Remaining time.Duration
}

func (e *ErrCooldown) Error() string {
	return fmt.Sprintf("auth: cooldown active, retry in %s", e.Remaining)
}

// WaitSeconds rounds the remaining time up to whole seconds, minimum one.
func (e *ErrCooldown) WaitSeconds() int64 {
	s := int64(math.Ceil(e.Remaining.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
