package store

import (
	"sort"
	"sync"

	"sealchat/internal/domain"
)

// MemoryKeyStore keeps key pairs for the lifetime of the process only.
type MemoryKeyStore struct {
	mu    sync.Mutex
	pairs map[domain.Username]domain.KeyPair
}

// NewMemoryKeyStore returns an empty MemoryKeyStore.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{pairs: make(map[domain.Username]domain.KeyPair)}
}

func (s *MemoryKeyStore) LoadKeyPair(identity domain.Username) (domain.KeyPair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kp, ok := s.pairs[identity]
	return kp, ok, nil
}

func (s *MemoryKeyStore) SaveKeyPair(identity domain.Username, kp domain.KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[identity] = kp
	return nil
}

// MemoryRoomKeyStore keeps room keys for the lifetime of the process only.
type MemoryRoomKeyStore struct {
	mu   sync.Mutex
	keys map[domain.RoomID]domain.RoomKey
}

// NewMemoryRoomKeyStore returns an empty MemoryRoomKeyStore.
func NewMemoryRoomKeyStore() *MemoryRoomKeyStore {
	return &MemoryRoomKeyStore{keys: make(map[domain.RoomID]domain.RoomKey)}
}

func (s *MemoryRoomKeyStore) LoadRoomKey(room domain.RoomID) (domain.RoomKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[room]
	return k, ok, nil
}

func (s *MemoryRoomKeyStore) SaveRoomKey(room domain.RoomID, key domain.RoomKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[room] = key
	return nil
}

func (s *MemoryRoomKeyStore) RemoveRoomKey(room domain.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, room)
	return nil
}

func (s *MemoryRoomKeyStore) ListRooms() ([]domain.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RoomID, 0, len(s.keys))
	for id := range s.keys {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

var (
	_ domain.KeyStore     = (*MemoryKeyStore)(nil)
	_ domain.RoomKeyStore = (*MemoryRoomKeyStore)(nil)
)
