package jwt

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	libJWT "github.com/golang-jwt/jwt/v5"
)

const minSecretLen = 64

// HS512 signs with a shared secret.
type HS512 struct {
	cfg    Config
	parser *libJWT.Parser
}

func NewHS512(cfg Config) (*HS512, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, ErrSigningKeyTooShort
	}
	for typ, ttl := range cfg.TTL {
		if !typ.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTokenType, typ)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("jwt: ttl for %s must be positive", typ)
		}
	}

	parser := libJWT.NewParser(
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuer(cfg.Issuer),
		libJWT.WithAudience(cfg.Audiences...),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(cfg.Clock.Now),
	)

	return &HS512{cfg: cfg, parser: parser}, nil
}

func (s *HS512) Generate(typ TokenType, userID int64, email string) (string, error) {
	ttl, ok := s.cfg.TTL[typ]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTokenType, typ)
	}

	now := s.cfg.Clock.Now()
	clm := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.cfg.UUID.Generate(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.cfg.Issuer,
			Audience:  s.cfg.Audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(ttl)),
		},
		Type:      typ,
		UserID:    userID,
		UserEmail: email,
	}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS512, clm).SignedString(s.cfg.Secret)
}

func (s *HS512) Verify(token string, expected ...TokenType) (*Claims, error) {
	var clm Claims

	parsed, err := s.parser.ParseWithClaims(token, &clm, func(t *libJWT.Token) (any, error) {
		if t.Method != libJWT.SigningMethodHS512 {
			return nil, ErrInvalidSigningMethod
		}
		return s.cfg.Secret, nil
	})
	switch {
	case errors.Is(err, libJWT.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, ErrInvalidSigningMethod):
		return nil, ErrInvalidSigningMethod
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	case !parsed.Valid:
		return nil, ErrInvalidToken
	}

	if strconv.FormatInt(clm.UserID, 10) != clm.Subject || !clm.Type.Valid() {
		return nil, ErrInvalidToken
	}
	if len(expected) > 0 && !slices.Contains(expected, clm.Type) {
		return &clm, ErrUnexpectedTokenType
	}

	return &clm, nil
}
