package secret

import (
	"errors"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/protocol/dm"
	"sealchat/internal/util/memzero"
)

// Create seals plaintext for recipient under a key pair that exists only
// for the duration of this call.
func Create(plaintext []byte, recipient domain.X25519Public) (domain.SecretEnvelope, error) {
	eph, err := crypto.GenerateX25519()
	if err != nil {
		return domain.SecretEnvelope{}, err
	}
	defer memzero.Zero(eph.Secret[:])

	env, err := dm.Encrypt(plaintext, recipient, eph.Secret)
	if err != nil {
		return domain.SecretEnvelope{}, err
	}
	return domain.SecretEnvelope{
		Ciphertext:         env.Ciphertext,
		EphemeralPublicKey: eph.Public,
		Nonce:              env.Nonce,
		ContentHash:        crypto.HashField(string(plaintext)),
	}, nil
}

// Read opens a secret addressed to the holder of recipient.
func Read(
	ciphertext []byte,
	nonce domain.Nonce,
	ephemeralPublic domain.X25519Public,
	recipient domain.X25519Private,
) ([]byte, error) {
	pt, err := dm.Decrypt(ciphertext, nonce, ephemeralPublic, recipient)
	if errors.Is(err, domain.ErrDecryption) {
		return nil, domain.ErrTampered
	}
	if err != nil {
		return nil, err
	}
	return pt, nil
}

// Open is Read over a whole envelope.
func Open(env domain.SecretEnvelope, recipient domain.X25519Private) ([]byte, error) {
	return Read(env.Ciphertext, env.Nonce, env.EphemeralPublicKey, recipient)
}

// VerifyHash reports whether plaintext matches a previously published
// content hash. It never fails; a mismatch is simply false.
func VerifyHash(plaintext []byte, expected string) bool {
	return crypto.VerifyField(string(plaintext), expected)
}
