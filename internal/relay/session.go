package relay

import (
	"sync"

	"github.com/google/uuid"

	"sealchat/internal/domain"
	"sealchat/internal/transport"
)

const sessionQueue = 256

// session is one client connection as the hub sees it. identity is set
// once the client authenticates and only touched under Hub.mu.
type session struct {
	id       string
	identity domain.Username
	rooms    map[domain.RoomID]struct{}

	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func newSession() *session {
	return &session{
		id:     uuid.NewString(),
		rooms:  make(map[domain.RoomID]struct{}),
		out:    make(chan []byte, sessionQueue),
		closed: make(chan struct{}),
	}
}

// deliver queues ev without blocking. It reports false when the session is
// closed or its queue is full.
func (s *session) deliver(ev domain.Event) bool {
	data, err := transport.Encode(ev)
	if err != nil {
		return false
	}
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.out <- data:
		return true
	default:
		return false
	}
}

func (s *session) close() {
	s.once.Do(func() { close(s.closed) })
}
