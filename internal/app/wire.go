package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"sealchat/internal/domain"
	"sealchat/internal/metrics"
	"sealchat/internal/services/identity"
	messagesvc "sealchat/internal/services/message"
	roomsvc "sealchat/internal/services/room"
	"sealchat/internal/store"
	"sealchat/internal/transport"
)

// ErrNoPassphrase is returned when the key files cannot be unlocked.
var ErrNoPassphrase = errors.New("passphrase required (-p or SEALCHAT_PASSPHRASE)")

// Wire bundles all stores, services and the transport for the CLI.
type Wire struct {
	Config   Config
	Log      *slog.Logger
	Identity *identity.Service
	Rooms    *roomsvc.Service

	// Set by Online.
	Transport *transport.Channel
	Messages  *messagesvc.Service
	Registry  *prometheus.Registry
}

// NewWire builds the offline part of the graph: encrypted stores and the
// identity and room services.
func NewWire(cfg Config, log *slog.Logger) (*Wire, error) {
	if cfg.Passphrase == "" {
		return nil, ErrNoPassphrase
	}
	if log == nil {
		log = slog.Default()
	}
	params := cfg.ScryptParams()
	keys := store.NewKeyFileStore(cfg.Home, cfg.Passphrase, params)
	roomKeys := store.NewRoomKeyFileStore(cfg.Home, cfg.Passphrase, params)

	return &Wire{
		Config:   cfg,
		Log:      log,
		Identity: identity.New(keys, log),
		Rooms:    roomsvc.New(roomKeys, log),
	}, nil
}

// Online adds the transport and message service. The message service
// subscribes before the room service so auth is the first frame after
// every connect. reg may be nil.
func (w *Wire) Online(reg domain.HashRegistry) error {
	if w.Transport != nil {
		return nil
	}
	if w.Config.Identity == "" {
		return errors.New("identity required (--identity or SEALCHAT_IDENTITY)")
	}
	w.Registry = prometheus.NewRegistry()
	ch := transport.New(transport.Options{
		URL:         w.Config.RelayURL,
		Backoff:     transport.Backoff{Floor: w.Config.Reconnect.Floor, Ceiling: w.Config.Reconnect.Ceiling},
		DialTimeout: w.Config.DialTimeout,
		Logger:      w.Log,
		Metrics:     metrics.NewTransport(w.Registry),
	})
	msgs, err := messagesvc.New(messagesvc.Config{
		Self:      domain.Username(w.Config.Identity),
		Identity:  w.Identity,
		Rooms:     w.Rooms,
		Transport: ch,
		Registry:  reg,
		Logger:    w.Log,
	})
	if err != nil {
		return fmt.Errorf("message service: %w", err)
	}
	w.Rooms.Attach(ch)
	w.Transport = ch
	w.Messages = msgs
	return nil
}

// Close tears the online part down.
func (w *Wire) Close() error {
	w.Rooms.Close()
	if w.Messages != nil {
		w.Messages.Close()
	}
	if w.Transport != nil {
		return w.Transport.Close()
	}
	return nil
}
