package room

import (
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	"sealchat/internal/domain"
	"sealchat/internal/protocol/dm"
)

// Overhead is the number of bytes secretbox adds to every plaintext.
const Overhead = secretbox.Overhead

// DeriveKey maps a passphrase to its room key. The same passphrase always
// yields the same key.
func DeriveKey(passphrase string) domain.RoomKey {
	sum := sha512.Sum512([]byte(passphrase))
	var key domain.RoomKey
	copy(key[:], sum[:domain.KeySize])
	return key
}

// Encrypt seals plaintext under the room key with a fresh nonce.
func Encrypt(plaintext []byte, key domain.RoomKey) (domain.Envelope, error) {
	nonce, err := dm.NewNonce()
	if err != nil {
		return domain.Envelope{}, err
	}
	ct := secretbox.Seal(nil, plaintext, (*[24]byte)(&nonce), (*[32]byte)(&key))
	return domain.Envelope{Ciphertext: ct, Nonce: nonce}, nil
}

// Decrypt opens a room ciphertext. A wrong passphrase surfaces as
// domain.ErrDecryption.
func Decrypt(ciphertext []byte, nonce domain.Nonce, key domain.RoomKey) ([]byte, error) {
	if len(ciphertext) < Overhead {
		return nil, fmt.Errorf("%w: ciphertext too short", domain.ErrDecryption)
	}
	pt, ok := secretbox.Open(nil, ciphertext, (*[24]byte)(&nonce), (*[32]byte)(&key))
	if !ok {
		return nil, domain.ErrDecryption
	}
	if pt == nil {
		pt = []byte{}
	}
	return pt, nil
}
