package entity

import "time"

type User struct {
	ID              int64
	Email           string
	PasswordHash    string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
}

func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// Verification is one single use, expiring credential. CodeHash is an HMAC
// digest for link tokens and an argon2id hash for OTPs.
type Verification struct {
	ID        int64
	UserID    int64
	Purpose   Purpose
	CodeHash  string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

func (v Verification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// Role names seeded by the migrations.
const (
	RoleAdmin = "Admin"
	RoleUsers = "Users"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
