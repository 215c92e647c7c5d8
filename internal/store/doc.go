// Package store provides persistence for sealchat's key material.
//
// It contains concrete implementations of the domain storage interfaces:
//   - Identity key pairs (KeyFileStore, MemoryKeyStore)
//   - Room keys (RoomKeyFileStore, MemoryRoomKeyStore)
//
// File stores serialise a JSON map, encrypt it with ChaCha20-Poly1305 under
// a scrypt-derived key and replace the file atomically. All methods are
// concurrency-safe via internal locking. Failures are reported wrapped in
// domain.ErrStorageFault so callers can decide to degrade.
package store
