package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params tunes the KDF cost.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultArgon2Params is sized for short secrets such as login passcodes.
var DefaultArgon2Params = Argon2Params{
	MemoryKiB:   32 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

var errArgon2Format = errors.New("hash: malformed argon2id digest")

// Argon2id stores digests in the PHC string format.
type Argon2id struct {
	params Argon2Params
	pepper string
}

// NewArgon2id uses DefaultArgon2Params.
func NewArgon2id(pepper string) *Argon2id {
	return NewArgon2idWithParams(DefaultArgon2Params, pepper)
}

func NewArgon2idWithParams(p Argon2Params, pepper string) *Argon2id {
	return &Argon2id{params: p, pepper: pepper}
}

func (a *Argon2id) Hash(plain string) ([]byte, error) {
	salt := make([]byte, a.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("hash: read salt: %w", err)
	}

	p := a.params
	key := argon2.IDKey([]byte(plain+a.pepper), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Appendf(nil, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

func (a *Argon2id) Verify(hashed, plain string) bool {
	if hashed == "" || plain == "" {
		return false
	}

	p, salt, want, err := decodeArgon2(hashed)
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(plain+a.pepper), salt, p.Iterations, p.MemoryKiB, p.Parallelism, uint32(len(want))) //nolint:gosec // key length fits
	return subtle.ConstantTimeCompare(want, got) == 1
}

func decodeArgon2(s string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errArgon2Format
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errArgon2Format
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, errArgon2Format
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, errArgon2Format
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errArgon2Format
	}

	return p, salt, key, nil
}
