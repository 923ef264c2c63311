// Package jwt issues and checks the typed HS512 tokens used by the auth
// flows, and carries verified claims through a request context.
package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningMethod = errors.New("jwt: invalid signing method")
	ErrSigningKeyTooShort   = errors.New("jwt: HS512 signing key must be at least 64 bytes")
	ErrTokenExpired         = errors.New("jwt: token has expired")
	ErrInvalidToken         = errors.New("jwt: invalid token")
	ErrUnexpectedTokenType  = errors.New("jwt: unexpected token type")
	ErrUnknownTokenType     = errors.New("jwt: unknown token type")
)

// TokenType tells which step of the auth flow a token was minted for.
type TokenType string

const (
	TypeOTPVerification TokenType = "otp_verification"
	TypeAccess          TokenType = "access_token"
	TypeRefresh         TokenType = "refresh_token"
)

func (t TokenType) Valid() bool {
	switch t {
	case TypeOTPVerification, TypeAccess, TypeRefresh:
		return true
	default:
		return false
	}
}

// JWT signs and verifies tokens.
type JWT interface {
	Generate(typ TokenType, userID int64, email string) (string, error)
	// Verify checks signature, issuer, audience and expiry. When expected is
	// non-empty the token type must be one of them.
	Verify(token string, expected ...TokenType) (*Claims, error)
}

// Claims is the token payload.
type Claims struct {
	jwt.RegisteredClaims
	Type      TokenType `json:"type"`
	UserID    int64     `json:"uid,string"`
	UserEmail string    `json:"email,omitempty"`
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config builds a signer. TTLs apply per token type.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       map[TokenType]time.Duration
	Clock     clocker
	UUID      generator
}

type ctxKey struct{}

// GetAuth returns the claims attached by the authentication middleware.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(ctxKey{}).(*Claims)
	if !ok {
		return nil
	}
	return clm
}

func SetAuth(ctx context.Context, clm *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, clm)
}
