package types

import (
	"context"
	"time"
)

// EventType is the discriminant carried in every wire frame.
type EventType string

const (
	EventConnected    EventType = "connected"
	EventDisconnected EventType = "disconnected"
	EventAuth         EventType = "auth"
	EventUserKey      EventType = "user_key"
	EventDirect       EventType = "dm"
	EventRoom         EventType = "room_message"
	EventJoinRoom     EventType = "join_room"
	EventLeaveRoom    EventType = "leave_room"
	EventDeleteRoom   EventType = "delete_room"
	EventSecret       EventType = "secret"
	EventSecretRead   EventType = "secret_read"
	EventError        EventType = "error"
)

// Local reports whether events of this type are synthesized by the
// transport and never written to the wire.
func (t EventType) Local() bool {
	return t == EventConnected || t == EventDisconnected
}

// Event is the closed set of payloads that cross the transport. The
// unexported marker keeps implementations inside this package so a type
// switch over the variants below is exhaustive.
type Event interface {
	Type() EventType
	isEvent()
}

// Handler receives dispatched events. A returned error is logged by the
// dispatcher and does not stop the remaining handlers.
type Handler func(ctx context.Context, ev Event) error

// HandlerID identifies a registration so it can be removed again.
type HandlerID uint64

// Connected is emitted locally once the link is live.
type Connected struct{}

// Disconnected is emitted locally whenever the link goes down. RetryIn is
// the delay before the next attempt; Final is set when no further attempt
// will be made.
type Disconnected struct {
	Err     error
	RetryIn time.Duration
	Final   bool
}

// Auth announces the client's identity and public key after connecting.
type Auth struct {
	Identity  Username     `json:"identity"`
	PublicKey X25519Public `json:"public_key"`
}

// UserKey is the relay's directory announcement of a peer's public key.
type UserKey struct {
	Identity  Username     `json:"identity"`
	PublicKey X25519Public `json:"public_key"`
}

// DirectMessage carries a box-sealed envelope between two identities.
type DirectMessage struct {
	From Username `json:"from"`
	To   Username `json:"to"`
	Envelope
}

// RoomMessage carries a secretbox-sealed envelope to every room member.
type RoomMessage struct {
	From Username `json:"from"`
	Room RoomID   `json:"room"`
	Envelope
}

// JoinRoom subscribes the sender to a room's traffic.
type JoinRoom struct {
	Room RoomID `json:"room"`
}

// LeaveRoom unsubscribes the sender from a room.
type LeaveRoom struct {
	Room RoomID `json:"room"`
}

// DeleteRoom tears a room down for every member.
type DeleteRoom struct {
	Room RoomID `json:"room"`
}

// SecretMessage carries a one-time envelope.
type SecretMessage struct {
	ID   SecretID `json:"id"`
	From Username `json:"from"`
	To   Username `json:"to"`
	SecretEnvelope
}

// SecretRead tells the relay a secret was opened and must be destroyed.
type SecretRead struct {
	ID SecretID `json:"id"`
}

// ErrorEvent is a relay-side error report.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (Connected) Type() EventType     { return EventConnected }
func (Disconnected) Type() EventType  { return EventDisconnected }
func (Auth) Type() EventType          { return EventAuth }
func (UserKey) Type() EventType       { return EventUserKey }
func (DirectMessage) Type() EventType { return EventDirect }
func (RoomMessage) Type() EventType   { return EventRoom }
func (JoinRoom) Type() EventType      { return EventJoinRoom }
func (LeaveRoom) Type() EventType     { return EventLeaveRoom }
func (DeleteRoom) Type() EventType    { return EventDeleteRoom }
func (SecretMessage) Type() EventType { return EventSecret }
func (SecretRead) Type() EventType    { return EventSecretRead }
func (ErrorEvent) Type() EventType    { return EventError }

func (Connected) isEvent()     {}
func (Disconnected) isEvent()  {}
func (Auth) isEvent()          {}
func (UserKey) isEvent()       {}
func (DirectMessage) isEvent() {}
func (RoomMessage) isEvent()   {}
func (JoinRoom) isEvent()      {}
func (LeaveRoom) isEvent()     {}
func (DeleteRoom) isEvent()    {}
func (SecretMessage) isEvent() {}
func (SecretRead) isEvent()    {}
func (ErrorEvent) isEvent()    {}
