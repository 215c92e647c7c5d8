package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"

	"sealchat/internal/domain"
)

// identityIDPrefix marks IDs produced by IdentityID.
const identityIDPrefix = "sc1"

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(pub domain.X25519Public) domain.Fingerprint {
	sum := sha256.Sum256(pub[:])
	return domain.Fingerprint(hex.EncodeToString(sum[:10]))
}

// IdentityID returns a compact, copy-pasteable identifier for a public key:
// "sc1" followed by the base58 BLAKE2b-256 digest of the key.
func IdentityID(pub domain.X25519Public) string {
	h := blake2b.Sum256(pub[:])
	return identityIDPrefix + base58.Encode(h[:])
}
