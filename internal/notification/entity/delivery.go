package entity

import "time"

// Kind names the email a delivery carries.
type Kind string

const (
	KindVerifyEmail   Kind = "verify_email"
	KindLoginOTP      Kind = "login_otp"
	KindResetPassword Kind = "reset_password"
)

func (k Kind) String() string { return string(k) }

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

func (s Status) String() string { return string(s) }

// Delivery is one row of the email delivery log. IdempotencyKey is unique;
// saving the same key again adds Attempts and replaces Status and LastError.
type Delivery struct {
	ID             int64
	IdempotencyKey string
	Kind           Kind
	Recipient      string
	Status         Status
	Attempts       int32
	LastError      string
	CreatedAt      time.Time
}
