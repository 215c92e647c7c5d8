package relay

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/metrics"
	"sealchat/internal/transport"
)

func newTestHub(t *testing.T, rps float64, burst int) (*Hub, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	h := NewHub(HubOptions{
		Rate:    rps,
		Burst:   burst,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics.NewRelay(reg),
	})
	return h, reg
}

func send(t *testing.T, h *Hub, s *session, ev domain.Event) {
	t.Helper()
	data, err := transport.Encode(ev)
	require.NoError(t, err)
	h.handle(s, data)
}

func drain(t *testing.T, s *session) []domain.Event {
	t.Helper()
	var out []domain.Event
	for {
		select {
		case data := <-s.out:
			ev, err := transport.Decode(data)
			require.NoError(t, err)
			out = append(out, ev)
		default:
			return out
		}
	}
}

func login(t *testing.T, h *Hub, name domain.Username) (*session, domain.KeyPair) {
	t.Helper()
	kp, err := crypto.GenerateX25519()
	require.NoError(t, err)
	s := h.attach()
	send(t, h, s, domain.Auth{Identity: name, PublicKey: kp.Public})
	return s, kp
}

func value(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return sum
}

func dmFrom(from, to domain.Username) domain.DirectMessage {
	ev := domain.DirectMessage{From: from, To: to}
	ev.Ciphertext = []byte("sealed")
	ev.Nonce[0] = 1
	return ev
}

func TestUnauthenticatedFramesAreRejected(t *testing.T) {
	h, reg := newTestHub(t, 0, 0)
	s := h.attach()
	send(t, h, s, dmFrom("alice", "bob"))
	h.handle(s, []byte("garbage"))

	events := drain(t, s)
	require.Len(t, events, 2)
	require.IsType(t, domain.ErrorEvent{}, events[0])
	require.Equal(t, 2.0, value(t, reg, "sealchat_relay_rejected_total"))
}

func TestDirectoryAnnouncements(t *testing.T) {
	h, reg := newTestHub(t, 0, 0)
	alice, akp := login(t, h, "alice")
	require.Empty(t, drain(t, alice))

	bob, bkp := login(t, h, "bob")
	require.Equal(t, []domain.Event{domain.UserKey{Identity: "alice", PublicKey: akp.Public}}, drain(t, bob))
	require.Equal(t, []domain.Event{domain.UserKey{Identity: "bob", PublicKey: bkp.Public}}, drain(t, alice))
	require.Equal(t, 2.0, value(t, reg, "sealchat_relay_clients"))

	h.detach(bob)
	require.Equal(t, 1.0, value(t, reg, "sealchat_relay_clients"))
}

func TestDirectRouting(t *testing.T) {
	h, reg := newTestHub(t, 0, 0)
	alice, _ := login(t, h, "alice")
	bob, _ := login(t, h, "bob")
	drain(t, alice)
	drain(t, bob)

	send(t, h, alice, dmFrom("alice", "bob"))
	require.Equal(t, []domain.Event{dmFrom("alice", "bob")}, drain(t, bob))

	send(t, h, alice, dmFrom("bob", "bob"))
	send(t, h, alice, dmFrom("alice", "carol"))
	events := drain(t, alice)
	require.Len(t, events, 2)
	require.Equal(t, domain.ErrorEvent{Message: "carol is not connected"}, events[1])
	require.Empty(t, drain(t, bob))
	require.Equal(t, 1.0, value(t, reg, "sealchat_relay_routed_total"))
}

func TestRoomFanOutAndDelete(t *testing.T) {
	h, _ := newTestHub(t, 0, 0)
	alice, _ := login(t, h, "alice")
	bob, _ := login(t, h, "bob")
	carol, _ := login(t, h, "carol")
	for _, s := range []*session{alice, bob, carol} {
		drain(t, s)
	}

	send(t, h, alice, domain.JoinRoom{Room: "lobby"})
	send(t, h, bob, domain.JoinRoom{Room: "lobby"})

	msg := domain.RoomMessage{From: "alice", Room: "lobby"}
	msg.Ciphertext = []byte("sealed")
	msg.Nonce[0] = 1
	send(t, h, alice, msg)
	require.Equal(t, []domain.Event{msg}, drain(t, bob))
	require.Empty(t, drain(t, alice))
	require.Empty(t, drain(t, carol))

	outsider := domain.RoomMessage{From: "carol", Room: "lobby", Envelope: msg.Envelope}
	send(t, h, carol, outsider)
	require.IsType(t, domain.ErrorEvent{}, drain(t, carol)[0])
	require.Empty(t, drain(t, bob))

	send(t, h, bob, domain.DeleteRoom{Room: "lobby"})
	require.Equal(t, []domain.Event{domain.DeleteRoom{Room: "lobby"}}, drain(t, alice))
	send(t, h, alice, msg)
	require.IsType(t, domain.ErrorEvent{}, drain(t, alice)[0])
}

func TestSecretsAreBurntOnRead(t *testing.T) {
	h, reg := newTestHub(t, 0, 0)
	alice, _ := login(t, h, "alice")
	bob, _ := login(t, h, "bob")
	drain(t, alice)
	drain(t, bob)

	sec := domain.SecretMessage{ID: "s1", From: "alice", To: "bob"}
	sec.Ciphertext = []byte("sealed")
	sec.EphemeralPublicKey[0] = 1
	sec.Nonce[0] = 1
	sec.ContentHash = "1field"
	send(t, h, alice, sec)
	require.Equal(t, []domain.Event{sec}, drain(t, bob))
	require.Equal(t, 1.0, value(t, reg, "sealchat_relay_secrets_held"))

	send(t, h, alice, domain.SecretRead{ID: "s1"})
	require.IsType(t, domain.ErrorEvent{}, drain(t, alice)[0])

	send(t, h, bob, domain.SecretRead{ID: "s1"})
	require.Empty(t, drain(t, bob))
	require.Equal(t, 0.0, value(t, reg, "sealchat_relay_secrets_held"))
	require.Equal(t, 1.0, value(t, reg, "sealchat_relay_secrets_burnt_total"))

	send(t, h, bob, domain.SecretRead{ID: "s1"})
	require.IsType(t, domain.ErrorEvent{}, drain(t, bob)[0])

	// A recipient that disconnects before reading loses the secret.
	sec.ID = "s2"
	send(t, h, alice, sec)
	require.Equal(t, 1.0, value(t, reg, "sealchat_relay_secrets_held"))
	h.detach(bob)
	require.Equal(t, 0.0, value(t, reg, "sealchat_relay_secrets_held"))
}

func TestRateLimitPerIdentity(t *testing.T) {
	h, reg := newTestHub(t, 1, 2)
	fixed := time.Unix(1_700_000_000, 0)
	h.now = func() time.Time { return fixed }
	alice, _ := login(t, h, "alice")

	for i := 0; i < 3; i++ {
		send(t, h, alice, domain.JoinRoom{Room: "r"})
	}
	events := drain(t, alice)
	require.Equal(t, []domain.Event{domain.ErrorEvent{Message: "rate limit exceeded"}}, events)
	require.Equal(t, 1.0, value(t, reg, "sealchat_relay_rejected_total"))
}

func TestReauthentication(t *testing.T) {
	h, _ := newTestHub(t, 0, 0)
	first, kp := login(t, h, "alice")

	// Same key: the newer connection wins.
	second := h.attach()
	send(t, h, second, domain.Auth{Identity: "alice", PublicKey: kp.Public})
	select {
	case <-first.closed:
	default:
		t.Fatal("stale connection not closed")
	}

	// Different key while online: refused.
	other, err := crypto.GenerateX25519()
	require.NoError(t, err)
	third := h.attach()
	send(t, h, third, domain.Auth{Identity: "alice", PublicKey: other.Public})
	require.IsType(t, domain.ErrorEvent{}, drain(t, third)[0])

	bob, _ := login(t, h, "bob")
	drain(t, second)
	send(t, h, bob, dmFrom("bob", "alice"))
	require.Equal(t, []domain.Event{dmFrom("bob", "alice")}, drain(t, second))
}
