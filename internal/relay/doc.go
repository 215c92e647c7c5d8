// Package relay is the server side of the sealchat wire protocol.
//
// The relay is an untrusted router. It never sees plaintext or private
// keys; it forwards sealed envelopes between authenticated WebSocket
// connections and keeps only in-memory routing state:
//
//   - a directory of identity -> public key, announced to every client as
//     user_key events;
//   - room memberships, held per connection and dropped on disconnect;
//   - the recipient of every one-time secret in flight, forgotten when the
//     recipient sends secret_read or disconnects. Secrets are never
//     redelivered.
//
// Each identity is rate limited with a token bucket. Frames the relay
// refuses are answered with an error event.
//
// HTTP API
//
//	GET /ws       WebSocket endpoint
//	GET /healthz  liveness
//	GET /readyz   readiness (503 while starting or draining)
//	GET /metrics  Prometheus metrics
package relay
