package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

type stubClock struct{ now time.Time }

func (c *stubClock) Now() time.Time { return c.now }

type stubUUID struct{}

func (stubUUID) Generate() string { return "0196a0f3-0000-7000-8000-000000000000" }

var testSecret = []byte(strings.Repeat("k", 64))

func newTestSigner(t *testing.T, clk *stubClock) *HS512 {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:    testSecret,
		Issuer:    "authflow",
		Audiences: []string{"authflow-api"},
		TTL: map[TokenType]time.Duration{
			TypeOTPVerification: 15 * time.Minute,
			TypeAccess:          15 * time.Minute,
			TypeRefresh:         7 * 24 * time.Hour,
		},
		Clock: clk,
		UUID:  stubUUID{},
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}
	return s
}

func TestNewHS512_ShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("error = %v, want ErrSigningKeyTooShort", err)
	}
}

func TestNewHS512_UnknownType(t *testing.T) {
	_, err := NewHS512(Config{Secret: testSecret, TTL: map[TokenType]time.Duration{"session": time.Minute}, Clock: &stubClock{}})
	if !errors.Is(err, ErrUnknownTokenType) {
		t.Fatalf("error = %v, want ErrUnknownTokenType", err)
	}
}

func TestHS512_RoundTrip(t *testing.T) {
	// Arrange
	clk := &stubClock{now: time.Now().UTC().Truncate(time.Second)}
	s := newTestSigner(t, clk)

	// Act
	tok, err := s.Generate(TypeAccess, 42, "a@b.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	clm, err := s.Verify(tok, TypeAccess)

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if clm.UserID != 42 || clm.Subject != "42" || clm.UserEmail != "a@b.com" || clm.Type != TypeAccess {
		t.Fatalf("unexpected claims %+v", clm)
	}
}

func TestHS512_TypeMismatch(t *testing.T) {
	// Arrange
	clk := &stubClock{now: time.Now().UTC()}
	s := newTestSigner(t, clk)
	tok, _ := s.Generate(TypeOTPVerification, 7, "")

	// Act
	clm, err := s.Verify(tok, TypeAccess, TypeRefresh)

	// Assert
	if !errors.Is(err, ErrUnexpectedTokenType) {
		t.Fatalf("error = %v, want ErrUnexpectedTokenType", err)
	}
	if clm == nil || clm.Type != TypeOTPVerification {
		t.Fatalf("claims should still be returned, got %+v", clm)
	}
}

func TestHS512_Expired(t *testing.T) {
	// Arrange
	clk := &stubClock{now: time.Now().UTC()}
	s := newTestSigner(t, clk)
	tok, _ := s.Generate(TypeOTPVerification, 7, "")

	// Act
	clk.now = clk.now.Add(16 * time.Minute)
	_, err := s.Verify(tok)

	// Assert
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
}

func TestHS512_Tampered(t *testing.T) {
	// Arrange
	clk := &stubClock{now: time.Now().UTC()}
	s := newTestSigner(t, clk)
	tok, _ := s.Generate(TypeAccess, 1, "")

	// Act
	_, err := s.Verify(tok[:len(tok)-2] + "xx")

	// Assert
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", err)
	}
}

func TestHS512_WrongAlgorithm(t *testing.T) {
	// Arrange
	clk := &stubClock{now: time.Now().UTC()}
	s := newTestSigner(t, clk)
	other, _ := libJWT.NewWithClaims(libJWT.SigningMethodHS256, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Subject:   "1",
			Issuer:    "authflow",
			Audience:  []string{"authflow-api"},
			IssuedAt:  libJWT.NewNumericDate(clk.now),
			ExpiresAt: libJWT.NewNumericDate(clk.now.Add(time.Minute)),
		},
		Type:   TypeAccess,
		UserID: 1,
	}).SignedString(testSecret)

	// Act
	_, err := s.Verify(other)

	// Assert
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", err)
	}
}
