package domain

import (
	interfaces "sealchat/internal/domain/interfaces"
	types "sealchat/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Username         = types.Username
	RoomID           = types.RoomID
	Fingerprint      = types.Fingerprint
	SecretID         = types.SecretID
	X25519Public     = types.X25519Public
	X25519Private    = types.X25519Private
	KeyPair          = types.KeyPair
	Nonce            = types.Nonce
	RoomKey          = types.RoomKey
	Envelope         = types.Envelope
	SecretEnvelope   = types.SecretEnvelope
	MessageKind      = types.MessageKind
	DecryptedMessage = types.DecryptedMessage
	EventType        = types.EventType
	Event            = types.Event
	Handler          = types.Handler
	HandlerID        = types.HandlerID
	Connected        = types.Connected
	Disconnected     = types.Disconnected
	Auth             = types.Auth
	UserKey          = types.UserKey
	DirectMessage    = types.DirectMessage
	RoomMessage      = types.RoomMessage
	JoinRoom         = types.JoinRoom
	LeaveRoom        = types.LeaveRoom
	DeleteRoom       = types.DeleteRoom
	SecretMessage    = types.SecretMessage
	SecretRead       = types.SecretRead
	ErrorEvent       = types.ErrorEvent
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService = interfaces.IdentityService
	RoomService     = interfaces.RoomService
	MessageService  = interfaces.MessageService
	Transport       = interfaces.Transport
	HashRegistry    = interfaces.HashRegistry
	KeyStore        = interfaces.KeyStore
	RoomKeyStore    = interfaces.RoomKeyStore
)

const (
	KeySize   = types.KeySize
	NonceSize = types.NonceSize

	KindDirect = types.KindDirect
	KindRoom   = types.KindRoom
	KindSecret = types.KindSecret

	EventConnected    = types.EventConnected
	EventDisconnected = types.EventDisconnected
	EventAuth         = types.EventAuth
	EventUserKey      = types.EventUserKey
	EventDirect       = types.EventDirect
	EventRoom         = types.EventRoom
	EventJoinRoom     = types.EventJoinRoom
	EventLeaveRoom    = types.EventLeaveRoom
	EventDeleteRoom   = types.EventDeleteRoom
	EventSecret       = types.EventSecret
	EventSecretRead   = types.EventSecretRead
	EventError        = types.EventError
)
