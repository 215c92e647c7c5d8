package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"sealchat/internal/domain"
	roomcipher "sealchat/internal/protocol/room"
)

const passphraseEntropyBits = 128

var (
	ErrNoRoom          = errors.New("room name is required")
	ErrEmptyPassphrase = errors.New("room passphrase is required")
)

// NewPassphrase returns a fresh 12-word BIP-39 mnemonic suitable as a room
// passphrase.
func NewPassphrase() (string, error) {
	entropy, err := bip39.NewEntropy(passphraseEntropyBits)
	if err != nil {
		return "", fmt.Errorf("room passphrase entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// Service joins, leaves and deletes rooms.
type Service struct {
	store domain.RoomKeyStore
	tx    domain.Transport
	log   *slog.Logger

	handlers map[domain.EventType]domain.HandlerID
}

// New returns a room service. Until Attach is called membership changes
// are only recorded locally.
func New(store domain.RoomKeyStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    store,
		log:      log.With("component", "room"),
		handlers: make(map[domain.EventType]domain.HandlerID),
	}
}

// Attach connects the service to a transport. Rooms are re-announced on
// every connected event, so Attach must run after whatever sends auth has
// subscribed.
func (s *Service) Attach(tx domain.Transport) {
	s.Close()
	s.tx = tx
	s.handlers[domain.EventDeleteRoom] = tx.On(domain.EventDeleteRoom, s.onDeleteRoom)
	s.handlers[domain.EventConnected] = tx.On(domain.EventConnected, s.onConnected)
}

// Close unsubscribes from the transport.
func (s *Service) Close() {
	if s.tx == nil {
		return
	}
	for t, id := range s.handlers {
		s.tx.Off(t, id)
	}
	s.handlers = make(map[domain.EventType]domain.HandlerID)
}

// Join derives and stores the room key, then announces membership.
func (s *Service) Join(ctx context.Context, room domain.RoomID, passphrase string) error {
	room = domain.RoomID(strings.TrimSpace(string(room)))
	if room == "" {
		return ErrNoRoom
	}
	if passphrase == "" {
		return ErrEmptyPassphrase
	}
	key := roomcipher.DeriveKey(passphrase)
	if err := s.store.SaveRoomKey(room, key); err != nil {
		return fmt.Errorf("join %s: %w", room, err)
	}
	s.log.Info("joined room", "room", room)
	return s.send(ctx, domain.JoinRoom{Room: room})
}

// Leave forgets the room key and announces departure.
func (s *Service) Leave(ctx context.Context, room domain.RoomID) error {
	if room == "" {
		return ErrNoRoom
	}
	if err := s.store.RemoveRoomKey(room); err != nil {
		return fmt.Errorf("leave %s: %w", room, err)
	}
	s.log.Info("left room", "room", room)
	return s.send(ctx, domain.LeaveRoom{Room: room})
}

// Delete forgets the room key and asks the relay to tear the room down for
// every member.
func (s *Service) Delete(ctx context.Context, room domain.RoomID) error {
	if room == "" {
		return ErrNoRoom
	}
	if err := s.store.RemoveRoomKey(room); err != nil {
		return fmt.Errorf("delete %s: %w", room, err)
	}
	s.log.Info("deleted room", "room", room)
	return s.send(ctx, domain.DeleteRoom{Room: room})
}

// Key returns the stored key of a joined room.
func (s *Service) Key(room domain.RoomID) (domain.RoomKey, error) {
	key, ok, err := s.store.LoadRoomKey(room)
	if err != nil {
		return domain.RoomKey{}, err
	}
	if !ok {
		return domain.RoomKey{}, fmt.Errorf("%w: %s", domain.ErrUnknownRoom, room)
	}
	return key, nil
}

// Rooms lists joined rooms in name order.
func (s *Service) Rooms() ([]domain.RoomID, error) {
	return s.store.ListRooms()
}

func (s *Service) send(ctx context.Context, ev domain.Event) error {
	if s.tx == nil {
		return nil
	}
	return s.tx.Send(ctx, ev)
}

func (s *Service) onDeleteRoom(_ context.Context, ev domain.Event) error {
	del, ok := ev.(domain.DeleteRoom)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	if err := s.store.RemoveRoomKey(del.Room); err != nil {
		return fmt.Errorf("remove deleted room %s: %w", del.Room, err)
	}
	s.log.Info("room deleted by relay", "room", del.Room)
	return nil
}

func (s *Service) onConnected(ctx context.Context, _ domain.Event) error {
	rooms, err := s.store.ListRooms()
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	for _, r := range rooms {
		if err := s.tx.Send(ctx, domain.JoinRoom{Room: r}); err != nil {
			return err
		}
	}
	return nil
}

var _ domain.RoomService = (*Service)(nil)
