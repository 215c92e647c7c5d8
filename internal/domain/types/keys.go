package types

import (
	"encoding/base64"
	"fmt"
)

// KeySize is the length of every X25519 key and room key.
const KeySize = 32

// NonceSize is the length of an XSalsa20 nonce.
const NonceSize = 24

// X25519Public is a Curve25519 public key.
type X25519Public [KeySize]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// IsZero reports whether the key is unset.
func (p X25519Public) IsZero() bool { return p == X25519Public{} }

// MarshalText encodes the key as standard base64.
func (p X25519Public) MarshalText() ([]byte, error) { return marshalFixed(p[:]) }

// UnmarshalText decodes a base64 key of exactly KeySize bytes.
func (p *X25519Public) UnmarshalText(b []byte) error { return unmarshalFixed("public key", p[:], b) }

// X25519Private is a Curve25519 private key.
type X25519Private [KeySize]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// MarshalText encodes the key as standard base64. Only the encrypted
// file stores ever call this.
func (k X25519Private) MarshalText() ([]byte, error) { return marshalFixed(k[:]) }

// UnmarshalText decodes a base64 key of exactly KeySize bytes.
func (k *X25519Private) UnmarshalText(b []byte) error { return unmarshalFixed("secret key", k[:], b) }

// String keeps private keys out of fmt output.
func (X25519Private) String() string { return "X25519Private(redacted)" }

// KeyPair is the long-term key pair owned by one identity.
type KeyPair struct {
	Public X25519Public  `json:"public_key"`
	Secret X25519Private `json:"secret_key"`
}

// Nonce is a 24-byte XSalsa20 nonce.
type Nonce [NonceSize]byte

// Slice returns the nonce as a []byte.
func (n Nonce) Slice() []byte { return n[:] }

// IsZero reports whether the nonce is unset.
func (n Nonce) IsZero() bool { return n == Nonce{} }

// MarshalText encodes the nonce as standard base64.
func (n Nonce) MarshalText() ([]byte, error) { return marshalFixed(n[:]) }

// UnmarshalText decodes a base64 nonce of exactly NonceSize bytes.
func (n *Nonce) UnmarshalText(b []byte) error { return unmarshalFixed("nonce", n[:], b) }

// RoomKey is the symmetric key shared by every member of a room.
type RoomKey [KeySize]byte

// Slice returns the key as a []byte.
func (k RoomKey) Slice() []byte { return k[:] }

// MarshalText encodes the key as standard base64.
func (k RoomKey) MarshalText() ([]byte, error) { return marshalFixed(k[:]) }

// UnmarshalText decodes a base64 key of exactly KeySize bytes.
func (k *RoomKey) UnmarshalText(b []byte) error { return unmarshalFixed("room key", k[:], b) }

// String keeps room keys out of fmt output.
func (RoomKey) String() string { return "RoomKey(redacted)" }

func marshalFixed(b []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
	base64.StdEncoding.Encode(out, b)
	return out, nil
}

func unmarshalFixed(what string, dst, src []byte) error {
	buf := make([]byte, base64.StdEncoding.DecodedLen(len(src)))
	n, err := base64.StdEncoding.Decode(buf, src)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n != len(dst) {
		return fmt.Errorf("%s: want %d bytes, got %d", what, len(dst), n)
	}
	copy(dst, buf[:n])
	return nil
}
