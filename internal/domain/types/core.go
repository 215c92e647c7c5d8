package types

// Username names a chat identity. One key pair exists per username.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// RoomID names a shared room.
type RoomID string

// String returns the string form of the room identifier.
func (id RoomID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// SecretID identifies a single burn-after-read message on the relay.
type SecretID string

// String returns the string form of the identifier.
func (id SecretID) String() string { return string(id) }
