package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEncryption means a primitive rejected inputs that looked valid.
	// It indicates a programming error and is never retried.
	ErrEncryption = errors.New("encryption failure")

	// ErrDecryption means the authentication tag did not verify: wrong
	// key, corrupted ciphertext or tampering.
	ErrDecryption = errors.New("decryption failure")

	// ErrTampered is the one-time secret variant of ErrDecryption.
	ErrTampered = fmt.Errorf("%w: message may have been tampered with", ErrDecryption)

	// ErrTransportDisconnected is reported when the link is down.
	ErrTransportDisconnected = errors.New("transport disconnected")

	// ErrMalformedFrame marks an inbound frame that could not be decoded.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrStorageFault marks a key persistence failure.
	ErrStorageFault = errors.New("key storage fault")

	ErrUnknownPeer = errors.New("unknown peer")
	ErrUnknownRoom = errors.New("unknown room")
	ErrInvalidKey  = errors.New("invalid key")
)
