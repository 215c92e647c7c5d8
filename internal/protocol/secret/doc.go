// Package secret implements one-time "burn after read" messages.
//
// # Flow
//
// Create:
//  1. Generate a throwaway X25519 key pair.
//  2. Seal the plaintext with NaCl box under (ephemeral secret, recipient
//     public), exactly as a direct message.
//  3. Hash the plaintext (crypto.HashField) so the content can be
//     registered with an external verifier.
//  4. Wipe the ephemeral secret before returning. Only its public half is
//     placed in the envelope.
//
// Read:
//  1. Open with (recipient secret, ephemeral public).
//  2. A failed tag is reported as domain.ErrTampered.
//
// # Security notes
//
// Once Create returns nobody, the sender included, can recompute the shared
// key from what was returned. Destroying the relay-side copy after the
// first read is the relay's job.
package secret
