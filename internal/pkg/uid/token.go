package uid

import (
	"crypto/rand"
	"encoding/base64"
)

// Token produces URL safe random strings of a fixed length.
type Token struct {
	length int
}

// NewToken returns a generator of length characters; 48 when length <= 0.
func NewToken(length int) Token {
	if length <= 0 {
		length = 48
	}
	return Token{length: length}
}

func (t Token) Generate() string {
	buf := make([]byte, base64.RawURLEncoding.DecodedLen(t.length)+1)
	_, _ = rand.Read(buf) // crypto/rand.Read never returns an error
	return base64.RawURLEncoding.EncodeToString(buf)[:t.length]
}
