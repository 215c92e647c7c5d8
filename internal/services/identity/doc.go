// Package identity hands out the long-term X25519 key pair of each local
// identity.
//
// Pairs are created lazily on first use, persisted via a domain.KeyStore
// and cached for the life of the process, so repeated calls for one
// identity always return the same pair. When the store cannot be read or
// written the service degrades to session-only keys rather than failing.
package identity
