// Package crypto exposes the minimal primitives used by sealchat.
//
// Contents
//
//   - X25519 key generation and clamping (GenerateX25519, PublicFromSecret)
//   - Short public-key fingerprints for display/logging (Fingerprint,
//     IdentityID)
//   - The integrity hash used to fingerprint one-time secrets (Hash), in a
//     full-width hex form and a truncated decimal "field" form
//
// # Notes
//
// The hex and field forms of a digest are two encodings of the same
// SHA-256 output, so equality in one form implies equality of content
// checked through the other. Message encryption lives in internal/protocol.
package crypto
