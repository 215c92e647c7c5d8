package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
)

const (
	// FieldDigestBytes is how many leading digest bytes the field form
	// keeps. 16 bytes fit the native field of the external verifier.
	FieldDigestBytes = 16

	// FieldSuffix is the type suffix the verifier expects on literals.
	FieldSuffix = "field"
)

// Digest is the SHA-256 of a message's UTF-8 bytes.
type Digest [sha256.Size]byte

// Hash computes the integrity digest of text.
func Hash(text string) Digest {
	return sha256.Sum256([]byte(text))
}

// Hex returns the full-width lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Field returns the first FieldDigestBytes of the digest read as a
// big-endian unsigned integer, in decimal, followed by FieldSuffix.
func (d Digest) Field() string {
	n := new(big.Int).SetBytes(d[:FieldDigestBytes])
	return n.String() + FieldSuffix
}

// HashHex is Hash(text).Hex().
func HashHex(text string) string { return Hash(text).Hex() }

// HashField is Hash(text).Field().
func HashField(text string) string { return Hash(text).Field() }

// VerifyField reports whether text hashes to the given field-form digest.
func VerifyField(text, expected string) bool {
	got := HashField(text)
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// VerifyHex reports whether text hashes to the given hex digest.
func VerifyHex(text, expected string) bool {
	got := HashHex(text)
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
