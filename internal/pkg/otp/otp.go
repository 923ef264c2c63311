// Package otp produces the numeric passcodes mailed during login.
package otp

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Passcode creates a fresh numeric code.
type Passcode interface {
	Generate(at time.Time) (string, error)
}

// TOTP derives each passcode from a throwaway random secret, so codes are
// unpredictable and never reused across calls. Only the code's hash is kept.
type TOTP struct {
	issuer string
	digits otp.Digits
	period uint
}

// NewTOTP defaults to six digits and a 30 second step.
func NewTOTP(issuer string, digits otp.Digits) *TOTP {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}
	return &TOTP{issuer: issuer, digits: digits, period: 30}
}

func (t *TOTP) Generate(at time.Time) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: "login",
		Period:      t.period,
		SecretSize:  20,
		Digits:      t.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otp: generate secret: %w", err)
	}

	return totp.GenerateCodeCustom(key.Secret(), at, totp.ValidateOpts{
		Period:    t.period,
		Digits:    t.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// Fixed always returns the same code. Used outside production so flows can be
// exercised without a mailbox.
type Fixed string

func (f Fixed) Generate(time.Time) (string, error) {
	return string(f), nil
}
