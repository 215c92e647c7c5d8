// Package transport implements the client's duplex event channel.
//
// A Channel owns one WebSocket connection to the relay and multiplexes
// typed events over it. Frames are JSON objects of the form
//
//	{"type": "<event type>", "payload": {...}}
//
// with binary fields (keys, nonces, ciphertexts) in standard base64.
//
// # State machine
//
//	Disconnected -> Connecting -> Connected -> Disconnected -> ...
//
// The cycle repeats while reconnection is allowed. Close is the only way
// to stop it: it cancels a pending retry timer and suppresses further
// attempts. After every loss the channel emits a local Disconnected event,
// then arms a single retry timer whose delay doubles from the floor up to
// the ceiling; a successful connection resets the delay to the floor.
// Connected and Disconnected are synthesized locally and never written.
//
// # Delivery
//
// Send writes only while Connected and silently drops otherwise; there is
// no queue and no acknowledgment. Inbound frames are decoded and
// dispatched one at a time on the read goroutine, so handlers observe
// events in network order. A malformed frame is logged and dropped. A
// handler that errors or panics does not prevent the remaining handlers
// for the same event from running.
package transport
