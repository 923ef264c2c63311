package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes passwords. The password is first keyed with the pepper through
// HMAC-SHA256 and base64 encoded, so bcrypt always sees 44 bytes regardless of
// the password length in bytes. The pepper is never stored.
type Bcrypt struct {
	cost   int
	pepper []byte
}

// NewBcrypt falls back to bcrypt.DefaultCost when cost is out of range.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost, pepper: []byte(pepper)}
}

func (b *Bcrypt) Hash(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(b.peppered(plain), b.cost)
}

func (b *Bcrypt) Verify(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), b.peppered(plain)) == nil
}

func (b *Bcrypt) peppered(plain string) []byte {
	mac := hmac.New(sha256.New, b.pepper)
	mac.Write([]byte(plain))
	return base64.StdEncoding.AppendEncode(nil, mac.Sum(nil))
}
