package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 is a deterministic keyed digest, used where a stored value must
// be looked up by its hash (verification link tokens).
type HMACSHA256 struct {
	key []byte
}

func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{key: []byte(secret)}
}

// Hash returns the lowercase hex digest.
func (h *HMACSHA256) Hash(plain string) ([]byte, error) {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(plain))
	return hex.AppendEncode(nil, mac.Sum(nil)), nil
}

func (h *HMACSHA256) Verify(hashed, plain string) bool {
	sum, _ := h.Hash(plain)
	return hmac.Equal([]byte(hashed), sum)
}
