package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"sealchat/internal/domain"
)

// frame is the outer wire object.
type frame struct {
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload"`
}

var errLocalEvent = errors.New("local-only event")

// Encode serialises ev into a wire frame.
func Encode(ev domain.Event) ([]byte, error) {
	if ev == nil {
		return nil, errors.New("encode: nil event")
	}
	if ev.Type().Local() {
		return nil, fmt.Errorf("encode %s: %w", ev.Type(), errLocalEvent)
	}
	if err := validate(ev); err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Type(), err)
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", ev.Type(), err)
	}
	return json.Marshal(frame{Type: ev.Type(), Payload: payload})
}

// Decode parses a wire frame. Every failure wraps domain.ErrMalformedFrame.
func Decode(data []byte) (domain.Event, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
	}
	if f.Type == "" {
		return nil, fmt.Errorf("%w: missing type", domain.ErrMalformedFrame)
	}

	var (
		ev  domain.Event
		err error
	)
	switch f.Type {
	case domain.EventAuth:
		ev, err = decodeAs[domain.Auth](f.Payload)
	case domain.EventUserKey:
		ev, err = decodeAs[domain.UserKey](f.Payload)
	case domain.EventDirect:
		ev, err = decodeAs[domain.DirectMessage](f.Payload)
	case domain.EventRoom:
		ev, err = decodeAs[domain.RoomMessage](f.Payload)
	case domain.EventJoinRoom:
		ev, err = decodeAs[domain.JoinRoom](f.Payload)
	case domain.EventLeaveRoom:
		ev, err = decodeAs[domain.LeaveRoom](f.Payload)
	case domain.EventDeleteRoom:
		ev, err = decodeAs[domain.DeleteRoom](f.Payload)
	case domain.EventSecret:
		ev, err = decodeAs[domain.SecretMessage](f.Payload)
	case domain.EventSecretRead:
		ev, err = decodeAs[domain.SecretRead](f.Payload)
	case domain.EventError:
		ev, err = decodeAs[domain.ErrorEvent](f.Payload)
	case domain.EventConnected, domain.EventDisconnected:
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedFrame, f.Type, errLocalEvent)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrMalformedFrame, f.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedFrame, f.Type, err)
	}
	if err := validate(ev); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedFrame, f.Type, err)
	}
	return ev, nil
}

func decodeAs[T domain.Event](raw json.RawMessage) (domain.Event, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("missing payload")
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// validate checks the fields each event type requires.
func validate(ev domain.Event) error {
	switch e := ev.(type) {
	case domain.Auth:
		return requireIdentity(e.Identity, e.PublicKey)
	case domain.UserKey:
		return requireIdentity(e.Identity, e.PublicKey)
	case domain.DirectMessage:
		if e.From == "" || e.To == "" {
			return errors.New("from and to are required")
		}
		return requireSealed(e.Ciphertext, e.Nonce)
	case domain.RoomMessage:
		if e.From == "" || e.Room == "" {
			return errors.New("from and room are required")
		}
		return requireSealed(e.Ciphertext, e.Nonce)
	case domain.JoinRoom:
		return requireRoom(e.Room)
	case domain.LeaveRoom:
		return requireRoom(e.Room)
	case domain.DeleteRoom:
		return requireRoom(e.Room)
	case domain.SecretMessage:
		if e.ID == "" || e.From == "" || e.To == "" {
			return errors.New("id, from and to are required")
		}
		if e.EphemeralPublicKey.IsZero() {
			return errors.New("ephemeral_public_key is required")
		}
		if e.ContentHash == "" {
			return errors.New("content_hash is required")
		}
		return requireSealed(e.Ciphertext, e.Nonce)
	case domain.SecretRead:
		if e.ID == "" {
			return errors.New("id is required")
		}
		return nil
	case domain.ErrorEvent:
		return nil
	case domain.Connected, domain.Disconnected:
		return errLocalEvent
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
}

func requireIdentity(id domain.Username, pub domain.X25519Public) error {
	if id == "" {
		return errors.New("identity is required")
	}
	if pub.IsZero() {
		return errors.New("public_key is required")
	}
	return nil
}

func requireRoom(room domain.RoomID) error {
	if room == "" {
		return errors.New("room is required")
	}
	return nil
}

// requireSealed rejects envelopes without ciphertext or nonce. A nonce
// absent from the payload decodes as all zeroes.
func requireSealed(ct []byte, nonce domain.Nonce) error {
	if len(ct) == 0 {
		return errors.New("ciphertext is required")
	}
	if nonce.IsZero() {
		return errors.New("nonce is required")
	}
	return nil
}
