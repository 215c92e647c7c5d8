package store

import (
	"fmt"
	"path/filepath"
	"sync"

	"sealchat/internal/domain"
)

const keysFilename = "keys.json.enc"

// KeyFileStore persists identity key pairs to disk, encrypted under a
// local passphrase.
type KeyFileStore struct {
	file sealedFile
	mu   sync.Mutex
}

// NewKeyFileStore returns a KeyFileStore rooted at dir.
func NewKeyFileStore(dir, passphrase string, params ScryptParams) *KeyFileStore {
	return &KeyFileStore{file: sealedFile{
		path:       filepath.Join(dir, keysFilename),
		passphrase: passphrase,
		params:     params,
	}}
}

// LoadKeyPair returns the stored pair for identity and whether it was present.
func (s *KeyFileStore) LoadKeyPair(identity domain.Username) (domain.KeyPair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := map[domain.Username]domain.KeyPair{}
	if err := s.file.load(&pairs); err != nil {
		return domain.KeyPair{}, false, fmt.Errorf("%w: load %s: %v", domain.ErrStorageFault, identity, err)
	}
	kp, ok := pairs[identity]
	return kp, ok, nil
}

// SaveKeyPair stores or replaces the pair for identity.
func (s *KeyFileStore) SaveKeyPair(identity domain.Username, kp domain.KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := map[domain.Username]domain.KeyPair{}
	if err := s.file.load(&pairs); err != nil {
		return fmt.Errorf("%w: load %s: %v", domain.ErrStorageFault, identity, err)
	}
	pairs[identity] = kp
	if err := s.file.save(pairs); err != nil {
		return fmt.Errorf("%w: save %s: %v", domain.ErrStorageFault, identity, err)
	}
	return nil
}

// Compile-time assertion that KeyFileStore implements domain.KeyStore.
var _ domain.KeyStore = (*KeyFileStore)(nil)
