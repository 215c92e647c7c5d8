// Package dm implements direct-message encryption between two identities.
//
// Messages are sealed with NaCl box: X25519 between the sender's secret key
// and the recipient's public key, then XSalsa20-Poly1305 under a fresh
// random 24-byte nonce. The construction authenticates the sender as well
// as the content; a recipient that opens a message knows it came from
// someone holding the claimed sender's secret key.
//
// # Errors
//
// Decrypt returns domain.ErrDecryption whenever the tag does not verify.
// An empty plaintext with a nil error always means an empty message.
package dm
