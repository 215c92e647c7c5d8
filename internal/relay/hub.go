package relay

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"sealchat/internal/domain"
	"sealchat/internal/metrics"
	"sealchat/internal/transport"
)

// Rejection reasons, used as metric labels.
const (
	reasonMalformed       = "malformed"
	reasonUnauthenticated = "unauthenticated"
	reasonIdentityInUse   = "identity_in_use"
	reasonRateLimited     = "rate_limited"
	reasonSpoofed         = "spoofed_sender"
	reasonOffline         = "recipient_offline"
	reasonNotMember       = "not_member"
	reasonUnknownSecret   = "unknown_secret"
	reasonUnexpected      = "unexpected_event"
	reasonBackpressure    = "backpressure"
)

// HubOptions configures a Hub.
type HubOptions struct {
	// Rate and Burst bound events per second per identity. Zero disables
	// limiting.
	Rate  float64
	Burst int

	Logger  *slog.Logger
	Metrics *metrics.Relay
}

// Hub holds the relay's routing state.
type Hub struct {
	log     *slog.Logger
	metrics *metrics.Relay
	limiter *keyedLimiter
	now     func() time.Time

	mu       sync.Mutex
	sessions map[*session]struct{}
	clients  map[domain.Username]*session
	keys     map[domain.Username]domain.X25519Public
	rooms    map[domain.RoomID]map[*session]struct{}
	secrets  map[domain.SecretID]domain.Username
}

// NewHub returns an empty hub.
func NewHub(opts HubOptions) *Hub {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRelay(nil)
	}
	return &Hub{
		log:      opts.Logger.With("component", "hub"),
		metrics:  opts.Metrics,
		limiter:  newKeyedLimiter(opts.Rate, opts.Burst),
		now:      time.Now,
		sessions: make(map[*session]struct{}),
		clients:  make(map[domain.Username]*session),
		keys:     make(map[domain.Username]domain.X25519Public),
		rooms:    make(map[domain.RoomID]map[*session]struct{}),
		secrets:  make(map[domain.SecretID]domain.Username),
	}
}

func (h *Hub) attach() *session {
	s := newSession()
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// detach forgets everything tied to s: its identity binding, room
// memberships and any secrets still waiting for it.
func (h *Hub) detach(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(s)
	s.close()
}

func (h *Hub) dropLocked(s *session) {
	delete(h.sessions, s)
	for room := range s.rooms {
		h.leaveLocked(s, room)
	}
	if s.identity == "" || h.clients[s.identity] != s {
		return
	}
	delete(h.clients, s.identity)
	h.metrics.Clients.Set(float64(len(h.clients)))
	for id, to := range h.secrets {
		if to == s.identity {
			delete(h.secrets, id)
			h.metrics.SecretsHeld.Dec()
		}
	}
	h.log.Info("client left", "identity", s.identity, "conn", s.id)
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sessions {
		h.dropLocked(s)
		s.close()
	}
}

// handle processes one inbound frame from s.
func (h *Hub) handle(s *session, data []byte) {
	ev, err := transport.Decode(data)
	if err != nil {
		h.mu.Lock()
		h.reject(s, reasonMalformed, err.Error())
		h.mu.Unlock()
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if s.identity == "" {
		auth, ok := ev.(domain.Auth)
		if !ok {
			h.reject(s, reasonUnauthenticated, "authenticate first")
			return
		}
		h.authenticate(s, auth)
		return
	}
	if !h.limiter.Allow(string(s.identity), h.now()) {
		h.reject(s, reasonRateLimited, "rate limit exceeded")
		return
	}

	switch e := ev.(type) {
	case domain.DirectMessage:
		if !h.checkSender(s, e.From) {
			return
		}
		h.forward(s, e.To, e)
	case domain.RoomMessage:
		if !h.checkSender(s, e.From) {
			return
		}
		members, ok := h.rooms[e.Room]
		if _, in := members[s]; !ok || !in {
			h.reject(s, reasonNotMember, fmt.Sprintf("not a member of %s", e.Room))
			return
		}
		for m := range members {
			if m != s {
				h.push(m, e)
			}
		}
		h.metrics.Routed.WithLabelValues(string(e.Type())).Inc()
	case domain.JoinRoom:
		members, ok := h.rooms[e.Room]
		if !ok {
			members = make(map[*session]struct{})
			h.rooms[e.Room] = members
		}
		members[s] = struct{}{}
		s.rooms[e.Room] = struct{}{}
	case domain.LeaveRoom:
		h.leaveLocked(s, e.Room)
	case domain.DeleteRoom:
		members := h.rooms[e.Room]
		if _, in := members[s]; !in {
			h.reject(s, reasonNotMember, fmt.Sprintf("not a member of %s", e.Room))
			return
		}
		for m := range members {
			delete(m.rooms, e.Room)
			if m != s {
				h.push(m, e)
			}
		}
		delete(h.rooms, e.Room)
		h.metrics.Routed.WithLabelValues(string(e.Type())).Inc()
		h.log.Info("room deleted", "room", e.Room, "identity", s.identity)
	case domain.SecretMessage:
		if !h.checkSender(s, e.From) {
			return
		}
		if _, dup := h.secrets[e.ID]; dup {
			h.reject(s, reasonUnexpected, "duplicate secret id")
			return
		}
		if h.forward(s, e.To, e) {
			h.secrets[e.ID] = e.To
			h.metrics.SecretsHeld.Inc()
		}
	case domain.SecretRead:
		to, ok := h.secrets[e.ID]
		if !ok || to != s.identity {
			h.reject(s, reasonUnknownSecret, "unknown secret")
			return
		}
		delete(h.secrets, e.ID)
		h.metrics.SecretsHeld.Dec()
		h.metrics.SecretsBurnt.Inc()
		h.log.Debug("secret burnt", "secret_id", e.ID)
	default:
		h.reject(s, reasonUnexpected, fmt.Sprintf("unexpected %s event", ev.Type()))
	}
}

// authenticate binds s to an identity. A reconnecting client with the
// same key replaces its stale connection; a different key for an identity
// that is online is refused.
func (h *Hub) authenticate(s *session, auth domain.Auth) {
	if old, online := h.clients[auth.Identity]; online {
		if h.keys[auth.Identity] != auth.PublicKey {
			h.reject(s, reasonIdentityInUse, fmt.Sprintf("%s is connected with another key", auth.Identity))
			return
		}
		h.dropLocked(old)
		old.close()
	}
	if prev, known := h.keys[auth.Identity]; known && prev != auth.PublicKey {
		h.log.Warn("identity key replaced", "identity", auth.Identity)
	}

	s.identity = auth.Identity
	h.clients[auth.Identity] = s
	h.keys[auth.Identity] = auth.PublicKey
	h.metrics.Clients.Set(float64(len(h.clients)))
	h.log.Info("client authenticated", "identity", auth.Identity, "conn", s.id)

	names := make([]domain.Username, 0, len(h.keys))
	for name := range h.keys {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	announce := domain.UserKey{Identity: auth.Identity, PublicKey: auth.PublicKey}
	for _, name := range names {
		if name == auth.Identity {
			continue
		}
		h.push(s, domain.UserKey{Identity: name, PublicKey: h.keys[name]})
		if peer, online := h.clients[name]; online {
			h.push(peer, announce)
		}
	}
}

func (h *Hub) checkSender(s *session, from domain.Username) bool {
	if from != s.identity {
		h.reject(s, reasonSpoofed, "sender does not match authenticated identity")
		return false
	}
	return true
}

func (h *Hub) forward(s *session, to domain.Username, ev domain.Event) bool {
	target, online := h.clients[to]
	if !online {
		h.reject(s, reasonOffline, fmt.Sprintf("%s is not connected", to))
		return false
	}
	if !h.push(target, ev) {
		return false
	}
	h.metrics.Routed.WithLabelValues(string(ev.Type())).Inc()
	return true
}

func (h *Hub) push(s *session, ev domain.Event) bool {
	if s.deliver(ev) {
		return true
	}
	h.metrics.Rejected.WithLabelValues(reasonBackpressure).Inc()
	h.log.Warn("dropping event for slow client", "type", ev.Type(), "conn", s.id)
	return false
}

func (h *Hub) leaveLocked(s *session, room domain.RoomID) {
	delete(s.rooms, room)
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, s)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// reject must be called with h.mu held.
func (h *Hub) reject(s *session, reason, msg string) {
	h.metrics.Rejected.WithLabelValues(reason).Inc()
	h.log.Debug("frame rejected", "reason", reason, "conn", s.id)
	s.deliver(domain.ErrorEvent{Message: msg})
}
