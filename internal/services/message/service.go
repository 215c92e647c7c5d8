package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"sealchat/internal/domain"
	"sealchat/internal/protocol/dm"
	roomcipher "sealchat/internal/protocol/room"
	"sealchat/internal/protocol/secret"
)

const defaultInboundBuffer = 64

// ErrNoSelf is returned when no local identity is configured.
var ErrNoSelf = errors.New("local identity is required")

// Config wires a Service.
type Config struct {
	Self      domain.Username
	Identity  domain.IdentityService
	Rooms     domain.RoomService
	Transport domain.Transport

	// Registry is optional. When set, secret content hashes are
	// registered on send and checked on receipt.
	Registry domain.HashRegistry

	Logger *slog.Logger
	Buffer int
}

// Service sends and receives encrypted messages over a transport.
type Service struct {
	self     domain.Username
	keys     domain.KeyPair
	rooms    domain.RoomService
	tx       domain.Transport
	registry domain.HashRegistry
	log      *slog.Logger

	inbound chan domain.DecryptedMessage
	done    chan struct{}
	once    sync.Once

	mu       sync.RWMutex
	peers    map[domain.Username]domain.X25519Public
	burnt    map[domain.SecretID]struct{}
	handlers map[domain.EventType]domain.HandlerID
}

// New loads (or creates) the local key pair and subscribes to the
// transport.
func New(cfg Config) (*Service, error) {
	if cfg.Self == "" {
		return nil, ErrNoSelf
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultInboundBuffer
	}
	keys, err := cfg.Identity.GetOrCreateKeys(cfg.Self)
	if err != nil {
		return nil, fmt.Errorf("load keys for %s: %w", cfg.Self, err)
	}

	s := &Service{
		self:     cfg.Self,
		keys:     keys,
		rooms:    cfg.Rooms,
		tx:       cfg.Transport,
		registry: cfg.Registry,
		log:      cfg.Logger.With("component", "message"),
		inbound:  make(chan domain.DecryptedMessage, cfg.Buffer),
		done:     make(chan struct{}),
		peers:    map[domain.Username]domain.X25519Public{cfg.Self: keys.Public},
		burnt:    make(map[domain.SecretID]struct{}),
		handlers: make(map[domain.EventType]domain.HandlerID),
	}
	s.subscribe(domain.EventConnected, s.onConnected)
	s.subscribe(domain.EventUserKey, s.onUserKey)
	s.subscribe(domain.EventDirect, s.onDirect)
	s.subscribe(domain.EventRoom, s.onRoom)
	s.subscribe(domain.EventSecret, s.onSecret)
	s.subscribe(domain.EventError, s.onError)
	return s, nil
}

func (s *Service) subscribe(t domain.EventType, h domain.Handler) {
	s.handlers[t] = s.tx.On(t, h)
}

// Close unsubscribes from the transport and unblocks pending deliveries.
// The Inbound channel is left open; consumers should stop on their own
// context.
func (s *Service) Close() {
	s.once.Do(func() {
		for t, id := range s.handlers {
			s.tx.Off(t, id)
		}
		close(s.done)
	})
}

// Inbound delivers decrypted (or failed) messages in arrival order.
func (s *Service) Inbound() <-chan domain.DecryptedMessage { return s.inbound }

// PublicKey returns the local identity's public key.
func (s *Service) PublicKey() domain.X25519Public { return s.keys.Public }

// AddPeer records a peer's public key, e.g. one verified out of band.
func (s *Service) AddPeer(name domain.Username, pub domain.X25519Public) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[name] = pub
}

// Peer returns the known public key of name.
func (s *Service) Peer(name domain.Username) (domain.X25519Public, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pub, ok := s.peers[name]
	return pub, ok
}

func (s *Service) peerKey(name domain.Username) (domain.X25519Public, error) {
	pub, ok := s.Peer(name)
	if !ok {
		return domain.X25519Public{}, fmt.Errorf("%w: %s", domain.ErrUnknownPeer, name)
	}
	return pub, nil
}

// SendDirect seals plaintext for one peer.
func (s *Service) SendDirect(ctx context.Context, to domain.Username, plaintext []byte) error {
	pub, err := s.peerKey(to)
	if err != nil {
		return err
	}
	env, err := dm.Encrypt(plaintext, pub, s.keys.Secret)
	if err != nil {
		return err
	}
	return s.tx.Send(ctx, domain.DirectMessage{From: s.self, To: to, Envelope: env})
}

// SendRoom seals plaintext under a joined room's key.
func (s *Service) SendRoom(ctx context.Context, room domain.RoomID, plaintext []byte) error {
	key, err := s.rooms.Key(room)
	if err != nil {
		return err
	}
	env, err := roomcipher.Encrypt(plaintext, key)
	if err != nil {
		return err
	}
	return s.tx.Send(ctx, domain.RoomMessage{From: s.self, Room: room, Envelope: env})
}

// SendSecret seals a one-time message for a peer and returns its id and
// envelope so the caller can publish the content hash elsewhere.
func (s *Service) SendSecret(
	ctx context.Context,
	to domain.Username,
	plaintext []byte,
) (domain.SecretID, domain.SecretEnvelope, error) {
	pub, err := s.peerKey(to)
	if err != nil {
		return "", domain.SecretEnvelope{}, err
	}
	env, err := secret.Create(plaintext, pub)
	if err != nil {
		return "", domain.SecretEnvelope{}, err
	}
	id := domain.SecretID(uuid.NewString())

	if s.registry != nil {
		if err := s.registry.Register(ctx, env.ContentHash); err != nil {
			s.log.Warn("content hash registration failed", "secret_id", id, "err", err)
		}
	}

	ev := domain.SecretMessage{ID: id, From: s.self, To: to, SecretEnvelope: env}
	if err := s.tx.Send(ctx, ev); err != nil {
		return "", domain.SecretEnvelope{}, err
	}
	return id, env, nil
}

func (s *Service) onConnected(ctx context.Context, _ domain.Event) error {
	return s.tx.Send(ctx, domain.Auth{Identity: s.self, PublicKey: s.keys.Public})
}

func (s *Service) onUserKey(_ context.Context, ev domain.Event) error {
	uk, ok := ev.(domain.UserKey)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	s.mu.Lock()
	prev, known := s.peers[uk.Identity]
	s.peers[uk.Identity] = uk.PublicKey
	s.mu.Unlock()
	if known && prev != uk.PublicKey {
		s.log.Warn("peer public key changed", "peer", uk.Identity)
	}
	return nil
}

func (s *Service) onDirect(ctx context.Context, ev domain.Event) error {
	msg, ok := ev.(domain.DirectMessage)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	if msg.To != s.self {
		s.log.Debug("ignoring direct message for another identity", "peer", msg.To)
		return nil
	}
	out := domain.DecryptedMessage{Kind: domain.KindDirect, From: msg.From, To: msg.To}
	pub, err := s.peerKey(msg.From)
	if err == nil {
		out.Plaintext, err = dm.Decrypt(msg.Ciphertext, msg.Nonce, pub, s.keys.Secret)
	}
	out.Err = err
	s.emit(ctx, out)
	return nil
}

func (s *Service) onRoom(ctx context.Context, ev domain.Event) error {
	msg, ok := ev.(domain.RoomMessage)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	out := domain.DecryptedMessage{Kind: domain.KindRoom, From: msg.From, Room: msg.Room}
	key, err := s.rooms.Key(msg.Room)
	if err == nil {
		out.Plaintext, err = roomcipher.Decrypt(msg.Ciphertext, msg.Nonce, key)
	}
	out.Err = err
	s.emit(ctx, out)
	return nil
}

func (s *Service) onSecret(ctx context.Context, ev domain.Event) error {
	msg, ok := ev.(domain.SecretMessage)
	if !ok {
		return fmt.Errorf("unexpected event %T", ev)
	}
	if msg.To != s.self {
		s.log.Debug("ignoring secret for another identity", "peer", msg.To)
		return nil
	}

	s.mu.Lock()
	_, seen := s.burnt[msg.ID]
	s.burnt[msg.ID] = struct{}{}
	s.mu.Unlock()
	if seen {
		s.log.Warn("dropping redelivered secret", "secret_id", msg.ID, "peer", msg.From)
		return nil
	}

	out := domain.DecryptedMessage{Kind: domain.KindSecret, From: msg.From, To: msg.To, SecretID: msg.ID}
	pt, err := secret.Open(msg.SecretEnvelope, s.keys.Secret)
	if err != nil {
		s.log.Warn("secret failed authentication", "secret_id", msg.ID, "peer", msg.From)
		out.Err = err
	} else {
		out.Plaintext = pt
		out.HashVerified = s.verifyHash(ctx, pt, msg.ContentHash)
	}

	// The record is consumed either way; tell the relay to destroy it.
	if err := s.tx.Send(ctx, domain.SecretRead{ID: msg.ID}); err != nil {
		s.log.Warn("burn acknowledgment failed", "secret_id", msg.ID, "err", err)
	}
	s.emit(ctx, out)
	return nil
}

func (s *Service) verifyHash(ctx context.Context, plaintext []byte, hash string) bool {
	if !secret.VerifyHash(plaintext, hash) {
		return false
	}
	if s.registry == nil {
		return true
	}
	ok, err := s.registry.Verify(ctx, hash)
	if err != nil {
		s.log.Warn("content hash lookup failed", "err", err)
		return false
	}
	return ok
}

func (s *Service) onError(_ context.Context, ev domain.Event) error {
	if e, ok := ev.(domain.ErrorEvent); ok {
		s.log.Warn("relay reported an error", "message", e.Message)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, msg domain.DecryptedMessage) {
	select {
	case s.inbound <- msg:
	case <-s.done:
	case <-ctx.Done():
	}
}

var _ domain.MessageService = (*Service)(nil)
