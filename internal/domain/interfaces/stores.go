package interfaces

import domaintypes "sealchat/internal/domain/types"

// KeyStore persists one long-term key pair per identity.
type KeyStore interface {
	LoadKeyPair(identity domaintypes.Username) (domaintypes.KeyPair, bool, error)
	SaveKeyPair(identity domaintypes.Username, pair domaintypes.KeyPair) error
}

// RoomKeyStore keeps the symmetric keys of joined rooms. Keys are held
// client-side only.
type RoomKeyStore interface {
	LoadRoomKey(room domaintypes.RoomID) (domaintypes.RoomKey, bool, error)
	SaveRoomKey(room domaintypes.RoomID, key domaintypes.RoomKey) error
	RemoveRoomKey(room domaintypes.RoomID) error
	ListRooms() ([]domaintypes.RoomID, error)
}
