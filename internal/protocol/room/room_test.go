package room_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sealchat/internal/domain"
	"sealchat/internal/protocol/room"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	require.Equal(t, room.DeriveKey("opensesame"), room.DeriveKey("opensesame"))
	require.NotEqual(t, room.DeriveKey("opensesame"), room.DeriveKey("opensesam"))
	require.NotEqual(t, room.DeriveKey(""), room.DeriveKey(" "))
}

func TestRoundTrip(t *testing.T) {
	key := room.DeriveKey("correct horse")
	for _, msg := range []string{"hi", "", "ünïcödé ✓"} {
		env, err := room.Encrypt([]byte(msg), key)
		require.NoError(t, err)

		got, err := room.Decrypt(env.Ciphertext, env.Nonce, key)
		require.NoError(t, err)
		require.Equal(t, msg, string(got))
	}
}

func TestOpenSesameScenario(t *testing.T) {
	// Two members derive the key independently from the shared passphrase.
	aliceKey := room.DeriveKey("opensesame")
	bobKey := room.DeriveKey("opensesame")
	require.Equal(t, aliceKey, bobKey)

	fromAlice, err := room.Encrypt([]byte("from alice"), aliceKey)
	require.NoError(t, err)
	fromBob, err := room.Encrypt([]byte("from bob"), bobKey)
	require.NoError(t, err)

	got, err := room.Decrypt(fromAlice.Ciphertext, fromAlice.Nonce, bobKey)
	require.NoError(t, err)
	require.Equal(t, "from alice", string(got))

	got, err = room.Decrypt(fromBob.Ciphertext, fromBob.Nonce, aliceKey)
	require.NoError(t, err)
	require.Equal(t, "from bob", string(got))
}

func TestWrongPassphraseFails(t *testing.T) {
	env, err := room.Encrypt([]byte("members only"), room.DeriveKey("right"))
	require.NoError(t, err)

	got, err := room.Decrypt(env.Ciphertext, env.Nonce, room.DeriveKey("wrong"))
	require.ErrorIs(t, err, domain.ErrDecryption)
	require.Nil(t, got)

	_, err = room.Decrypt(nil, env.Nonce, room.DeriveKey("right"))
	require.ErrorIs(t, err, domain.ErrDecryption)
}

func TestFreshNoncePerCall(t *testing.T) {
	key := room.DeriveKey("k")
	a, err := room.Encrypt([]byte("same"), key)
	require.NoError(t, err)
	b, err := room.Encrypt([]byte("same"), key)
	require.NoError(t, err)
	require.NotEqual(t, a.Nonce, b.Nonce)
	require.NotEqual(t, a.Ciphertext, b.Ciphertext)
}
