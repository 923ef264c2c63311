// Package hash turns secrets into values that are safe to store and checks
// candidates against them.
package hash

// Hash produces and verifies stored digests.
type Hash interface {
	Hash(plain string) ([]byte, error)
	Verify(hashed, plain string) bool
}
