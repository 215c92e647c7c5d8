package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
)

// ErrNoIdentity is returned for an empty identity name.
var ErrNoIdentity = errors.New("identity name is required")

// Service manages identity key pairs using a backing store.
type Service struct {
	store domain.KeyStore
	log   *slog.Logger

	mu    sync.Mutex
	cache map[domain.Username]domain.KeyPair
}

// New returns an identity service backed by the given store.
func New(store domain.KeyStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store: store,
		log:   log.With("component", "identity"),
		cache: make(map[domain.Username]domain.KeyPair),
	}
}

// GetOrCreateKeys returns the key pair for identity, generating and
// persisting one on first use.
//
// A storage fault is not returned: the pair is generated (or kept) for
// this process only and a warning is logged. The only error is a failure
// of the random source.
func (s *Service) GetOrCreateKeys(identity domain.Username) (domain.KeyPair, error) {
	if identity == "" {
		return domain.KeyPair{}, ErrNoIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if kp, ok := s.cache[identity]; ok {
		return kp, nil
	}

	kp, found, err := s.store.LoadKeyPair(identity)
	switch {
	case err != nil:
		s.log.Warn("key store unreadable, using session keys", "identity", identity, "err", err)
		found = false
	case found:
		if verr := crypto.ValidateKeyPair(kp); verr != nil {
			s.log.Warn("stored key pair is invalid, regenerating", "identity", identity, "err", verr)
			found = false
		}
	}

	if !found {
		kp, err = crypto.GenerateX25519()
		if err != nil {
			return domain.KeyPair{}, fmt.Errorf("generate key pair: %w", err)
		}
		if err := s.store.SaveKeyPair(identity, kp); err != nil {
			s.log.Warn("could not persist key pair, keys last for this session only",
				"identity", identity, "err", err)
		} else {
			s.log.Info("created identity key pair", "identity", identity)
		}
	}

	s.cache[identity] = kp
	return kp, nil
}

// Fingerprint returns the short hex fingerprint of the identity's public key.
func (s *Service) Fingerprint(identity domain.Username) (domain.Fingerprint, error) {
	kp, err := s.GetOrCreateKeys(identity)
	if err != nil {
		return "", err
	}
	return crypto.Fingerprint(kp.Public), nil
}

// ID returns the base58 identity ID ("sc1...") of the identity's public key.
func (s *Service) ID(identity domain.Username) (string, error) {
	kp, err := s.GetOrCreateKeys(identity)
	if err != nil {
		return "", err
	}
	return crypto.IdentityID(kp.Public), nil
}

var _ domain.IdentityService = (*Service)(nil)
