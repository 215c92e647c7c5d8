// Package main runs the in-memory WebSocket relay used by sealchat.
//
// Endpoints
//
//	GET /ws       WebSocket; frames are {"type": ..., "payload": ...}
//	GET /healthz  liveness
//	GET /readyz   readiness
//	GET /metrics  Prometheus metrics
//
// Behaviour
//
//   - All state is held in memory and lost on process exit. Nothing is
//     queued for offline recipients; the sender gets an error event.
//   - Clients authenticate with an auth frame naming their identity and
//     public key. The relay announces keys to every client as user_key
//     frames.
//   - One-time secrets are forgotten once the recipient acknowledges
//     reading them, or disconnects.
//   - Each identity is rate limited (--rate, --burst).
//   - The default listen address is :8080.
//
// The relay is an untrusted middleman. It never sees plaintext or private
// keys; it only routes ciphertext and public keys.
package main
