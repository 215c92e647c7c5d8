package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"sealchat/internal/domain"
)

const roomsFilename = "rooms.json.enc"

// RoomKeyFileStore persists the keys of joined rooms to disk.
type RoomKeyFileStore struct {
	file sealedFile
	mu   sync.Mutex
}

// NewRoomKeyFileStore returns a RoomKeyFileStore rooted at dir.
func NewRoomKeyFileStore(dir, passphrase string, params ScryptParams) *RoomKeyFileStore {
	return &RoomKeyFileStore{file: sealedFile{
		path:       filepath.Join(dir, roomsFilename),
		passphrase: passphrase,
		params:     params,
	}}
}

// LoadRoomKey returns the key for room and whether it was present.
func (s *RoomKeyFileStore) LoadRoomKey(room domain.RoomID) (domain.RoomKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return domain.RoomKey{}, false, err
	}
	k, ok := keys[room]
	return k, ok, nil
}

// SaveRoomKey stores or replaces the key for room.
func (s *RoomKeyFileStore) SaveRoomKey(room domain.RoomID, key domain.RoomKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return err
	}
	keys[room] = key
	return s.save(keys)
}

// RemoveRoomKey forgets room. Removing an unknown room is not an error.
func (s *RoomKeyFileStore) RemoveRoomKey(room domain.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := keys[room]; !ok {
		return nil
	}
	delete(keys, room)
	return s.save(keys)
}

// ListRooms returns the joined rooms in lexical order.
func (s *RoomKeyFileStore) ListRooms() ([]domain.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.RoomID, 0, len(keys))
	for id := range keys {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *RoomKeyFileStore) load() (map[domain.RoomID]domain.RoomKey, error) {
	keys := map[domain.RoomID]domain.RoomKey{}
	if err := s.file.load(&keys); err != nil {
		return nil, fmt.Errorf("%w: load rooms: %v", domain.ErrStorageFault, err)
	}
	return keys, nil
}

func (s *RoomKeyFileStore) save(keys map[domain.RoomID]domain.RoomKey) error {
	if err := s.file.save(keys); err != nil {
		return fmt.Errorf("%w: save rooms: %v", domain.ErrStorageFault, err)
	}
	return nil
}

// Compile-time assertion that RoomKeyFileStore implements domain.RoomKeyStore.
var _ domain.RoomKeyStore = (*RoomKeyFileStore)(nil)
