package interfaces

import (
	"context"

	domaintypes "sealchat/internal/domain/types"
)

// IdentityService hands out the long-term key pair of an identity,
// creating it on first use.
type IdentityService interface {
	GetOrCreateKeys(identity domaintypes.Username) (domaintypes.KeyPair, error)
	Fingerprint(identity domaintypes.Username) (domaintypes.Fingerprint, error)
}

// RoomService manages room membership and the keys that go with it.
type RoomService interface {
	Join(ctx context.Context, room domaintypes.RoomID, passphrase string) error
	Leave(ctx context.Context, room domaintypes.RoomID) error
	Delete(ctx context.Context, room domaintypes.RoomID) error
	Key(room domaintypes.RoomID) (domaintypes.RoomKey, error)
	Rooms() ([]domaintypes.RoomID, error)
}

// MessageService turns plaintext into envelopes on the way out and back
// into plaintext on the way in.
type MessageService interface {
	SendDirect(ctx context.Context, to domaintypes.Username, plaintext []byte) error
	SendRoom(ctx context.Context, room domaintypes.RoomID, plaintext []byte) error
	SendSecret(
		ctx context.Context,
		to domaintypes.Username,
		plaintext []byte,
	) (domaintypes.SecretID, domaintypes.SecretEnvelope, error)
	Inbound() <-chan domaintypes.DecryptedMessage
}

// Transport is the duplex event channel the services publish to and
// subscribe on.
type Transport interface {
	Send(ctx context.Context, ev domaintypes.Event) error
	On(t domaintypes.EventType, h domaintypes.Handler) domaintypes.HandlerID
	Off(t domaintypes.EventType, id domaintypes.HandlerID)
}

// HashRegistry is the external verification service content hashes are
// published to. It is optional.
type HashRegistry interface {
	Register(ctx context.Context, contentHash string) error
	Verify(ctx context.Context, contentHash string) (bool, error)
}
