package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"sealchat/internal/domain"
)

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateX25519() (domain.KeyPair, error) {
	var priv domain.X25519Private
	if _, err := rand.Read(priv[:]); err != nil {
		return domain.KeyPair{}, err
	}
	clamp(&priv)
	pub, err := PublicFromSecret(priv)
	if err != nil {
		return domain.KeyPair{}, err
	}
	return domain.KeyPair{Public: pub, Secret: priv}, nil
}

// PublicFromSecret recomputes the public half of a key pair.
func PublicFromSecret(priv domain.X25519Private) (domain.X25519Public, error) {
	var pub domain.X25519Public
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, fmt.Errorf("%w: %v", domain.ErrInvalidKey, err)
	}
	copy(pub[:], pb)
	return pub, nil
}

// ValidateKeyPair checks that pub is the public half of priv.
func ValidateKeyPair(kp domain.KeyPair) error {
	pub, err := PublicFromSecret(kp.Secret)
	if err != nil {
		return err
	}
	if pub != kp.Public {
		return fmt.Errorf("%w: public key does not match secret key", domain.ErrInvalidKey)
	}
	return nil
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
