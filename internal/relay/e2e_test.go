package relay_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"sealchat/internal/domain"
	"sealchat/internal/relay"
	"sealchat/internal/services/identity"
	"sealchat/internal/services/message"
	"sealchat/internal/services/room"
	"sealchat/internal/store"
	"sealchat/internal/transport"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type client struct {
	ch    *transport.Channel
	rooms *room.Service
	msgs  *message.Service
	peers chan domain.Username
}

// dial wires a client the way the CLI does: the message service
// subscribes first so auth precedes the room service's rejoins.
func dial(t *testing.T, url string, name domain.Username) *client {
	t.Helper()
	ch := transport.New(transport.Options{
		URL:     url,
		Backoff: transport.Backoff{Floor: 10 * time.Millisecond, Ceiling: 50 * time.Millisecond},
		Logger:  quiet(),
	})
	rooms := room.New(store.NewMemoryRoomKeyStore(), quiet())
	msgs, err := message.New(message.Config{
		Self:      name,
		Identity:  identity.New(store.NewMemoryKeyStore(), quiet()),
		Rooms:     rooms,
		Transport: ch,
		Logger:    quiet(),
	})
	require.NoError(t, err)
	rooms.Attach(ch)

	c := &client{ch: ch, rooms: rooms, msgs: msgs, peers: make(chan domain.Username, 8)}
	ch.On(domain.EventUserKey, func(_ context.Context, ev domain.Event) error {
		select {
		case c.peers <- ev.(domain.UserKey).Identity:
		default:
		}
		return nil
	})
	connected := make(chan struct{}, 1)
	ch.On(domain.EventConnected, func(context.Context, domain.Event) error {
		select {
		case connected <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, ch.Connect(context.Background()))
	<-connected
	t.Cleanup(func() {
		rooms.Close()
		msgs.Close()
		_ = ch.Close()
	})
	return c
}

func startRelay(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	srv := relay.NewServer(relay.Config{Log: quiet(), Registry: reg})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func waitPeer(t *testing.T, c *client, name domain.Username) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-c.peers:
			if got == name {
				return
			}
		case <-deadline:
			t.Fatalf("never learned about %s", name)
		}
	}
}

func inbound(t *testing.T, c *client) domain.DecryptedMessage {
	t.Helper()
	select {
	case m := <-c.msgs.Inbound():
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no inbound message")
		return domain.DecryptedMessage{}
	}
}

func TestDirectAndSecretThroughRelay(t *testing.T) {
	reg := prometheus.NewRegistry()
	url := startRelay(t, reg)

	alice := dial(t, url, "alice")
	bob := dial(t, url, "bob")
	waitPeer(t, alice, "bob")
	waitPeer(t, bob, "alice")

	ctx := context.Background()
	require.NoError(t, alice.msgs.SendDirect(ctx, "bob", []byte("hello")))
	got := inbound(t, bob)
	require.NoError(t, got.Err)
	require.Equal(t, "hello", string(got.Plaintext))
	require.Equal(t, domain.Username("alice"), got.From)

	id, _, err := alice.msgs.SendSecret(ctx, "bob", []byte("burn me"))
	require.NoError(t, err)
	got = inbound(t, bob)
	require.NoError(t, got.Err)
	require.Equal(t, id, got.SecretID)
	require.Equal(t, "burn me", string(got.Plaintext))
	require.True(t, got.HashVerified)

	require.Eventually(t, func() bool {
		families, err := reg.Gather()
		if err != nil {
			return false
		}
		for _, mf := range families {
			if mf.GetName() == "sealchat_relay_secrets_burnt_total" {
				return mf.GetMetric()[0].GetCounter().GetValue() == 1
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomThroughRelay(t *testing.T) {
	url := startRelay(t, nil)
	alice := dial(t, url, "alice")
	bob := dial(t, url, "bob")

	ctx := context.Background()
	require.NoError(t, alice.rooms.Join(ctx, "lobby", "opensesame"))
	require.NoError(t, bob.rooms.Join(ctx, "lobby", "opensesame"))

	// Bob's join frame races alice's first message; resend until it lands.
	require.Eventually(t, func() bool {
		if err := alice.msgs.SendRoom(ctx, "lobby", []byte("hi room")); err != nil {
			return false
		}
		select {
		case m := <-bob.msgs.Inbound():
			return m.Err == nil && string(m.Plaintext) == "hi room"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.rooms.Delete(ctx, "lobby"))
	require.Eventually(t, func() bool {
		_, err := bob.rooms.Key("lobby")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv := relay.NewServer(relay.Config{Log: quiet()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv.SetReady(true)
	resp, err = http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(body), "sealchat_relay_clients")
}
