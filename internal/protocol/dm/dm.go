package dm

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/box"

	"sealchat/internal/domain"
	"sealchat/internal/util/memzero"
)

// Overhead is the number of bytes box adds to every plaintext.
const Overhead = box.Overhead

// Encrypt seals plaintext for recipient using sender's secret key. Every
// call draws a new random nonce.
func Encrypt(
	plaintext []byte,
	recipient domain.X25519Public,
	sender domain.X25519Private,
) (domain.Envelope, error) {
	defer memzero.Zero(sender[:])

	nonce, err := NewNonce()
	if err != nil {
		return domain.Envelope{}, err
	}
	ct := box.Seal(nil, plaintext, (*[24]byte)(&nonce), (*[32]byte)(&recipient), (*[32]byte)(&sender))
	return domain.Envelope{Ciphertext: ct, Nonce: nonce}, nil
}

// Decrypt opens a ciphertext that sender sealed for recipient.
func Decrypt(
	ciphertext []byte,
	nonce domain.Nonce,
	sender domain.X25519Public,
	recipient domain.X25519Private,
) ([]byte, error) {
	defer memzero.Zero(recipient[:])

	if len(ciphertext) < Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", domain.ErrDecryption)
	}
	pt, ok := box.Open(nil, ciphertext, (*[24]byte)(&nonce), (*[32]byte)(&sender), (*[32]byte)(&recipient))
	if !ok {
		return nil, domain.ErrDecryption
	}
	if pt == nil {
		pt = []byte{}
	}
	return pt, nil
}

// NewNonce draws a 24-byte nonce from the system CSPRNG.
func NewNonce() (domain.Nonce, error) {
	var nonce domain.Nonce
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nonce, fmt.Errorf("%w: nonce: %v", domain.ErrEncryption, err)
	}
	return nonce, nil
}
