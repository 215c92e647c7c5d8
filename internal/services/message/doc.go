// Package message turns plaintext into envelopes on the way out and
// envelopes back into plaintext on the way in.
//
// Outbound, the service resolves the recipient's public key from the peer
// directory (filled from the relay's user_key announcements) or the room
// key from the room service, seals the plaintext with the matching cipher
// and hands the event to the transport. Inbound, it subscribes to the
// transport's dm, room_message and secret events and publishes one
// DecryptedMessage per envelope on the Inbound channel. A failed
// decryption is delivered with Err set; it is never replaced by an empty
// or placeholder plaintext.
//
// On every (re)connection the service authenticates by sending its
// identity and public key.
package message
