package types

// Envelope is what a direct or room message becomes once encrypted.
type Envelope struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      Nonce  `json:"nonce"`
}

// SecretEnvelope is a one-time message sealed with a throwaway key pair.
// Only the public half of that pair is carried; the secret half never
// leaves the call that created the envelope.
type SecretEnvelope struct {
	Ciphertext         []byte       `json:"ciphertext"`
	EphemeralPublicKey X25519Public `json:"ephemeral_public_key"`
	Nonce              Nonce        `json:"nonce"`
	ContentHash        string       `json:"content_hash"`
}

// MessageKind tells which cipher produced a DecryptedMessage.
type MessageKind string

const (
	KindDirect MessageKind = "direct"
	KindRoom   MessageKind = "room"
	KindSecret MessageKind = "secret"
)

// DecryptedMessage is what MessageService hands to the UI for every
// inbound envelope. Err is set when decryption failed; Plaintext is then
// nil and must not be rendered as message content.
type DecryptedMessage struct {
	Kind      MessageKind `json:"kind"`
	From      Username    `json:"from"`
	To        Username    `json:"to,omitempty"`
	Room      RoomID      `json:"room,omitempty"`
	SecretID  SecretID    `json:"secret_id,omitempty"`
	Plaintext []byte      `json:"plaintext,omitempty"`

	// HashVerified is set for secrets whose plaintext matched the
	// content hash that travelled with them.
	HashVerified bool  `json:"hash_verified,omitempty"`
	Err          error `json:"-"`
}
