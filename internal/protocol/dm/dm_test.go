package dm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/protocol/dm"
)

func keyPair(t *testing.T) domain.KeyPair {
	t.Helper()
	kp, err := crypto.GenerateX25519()
	require.NoError(t, err)
	return kp
}

func TestRoundTrip(t *testing.T) {
	alice := keyPair(t)
	bob := keyPair(t)

	for _, msg := range [][]byte{[]byte("hello"), {}, bytes.Repeat([]byte{0xff}, 4096)} {
		env, err := dm.Encrypt(msg, bob.Public, alice.Secret)
		require.NoError(t, err)
		require.Len(t, env.Ciphertext, len(msg)+dm.Overhead)

		got, err := dm.Decrypt(env.Ciphertext, env.Nonce, alice.Public, bob.Secret)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, msg, got)
	}
}

func TestFreshNoncePerCall(t *testing.T) {
	alice := keyPair(t)
	bob := keyPair(t)

	first, err := dm.Encrypt([]byte("same"), bob.Public, alice.Secret)
	require.NoError(t, err)
	second, err := dm.Encrypt([]byte("same"), bob.Public, alice.Secret)
	require.NoError(t, err)

	require.NotEqual(t, first.Nonce, second.Nonce)
	require.NotEqual(t, first.Ciphertext, second.Ciphertext)
}

func TestHelloScenario(t *testing.T) {
	sender := keyPair(t)
	recipient := keyPair(t)
	stranger := keyPair(t)

	env, err := dm.Encrypt([]byte("hello"), recipient.Public, sender.Secret)
	require.NoError(t, err)

	got, err := dm.Decrypt(env.Ciphertext, env.Nonce, sender.Public, recipient.Secret)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	got, err = dm.Decrypt(env.Ciphertext, env.Nonce, sender.Public, stranger.Secret)
	require.ErrorIs(t, err, domain.ErrDecryption)
	require.Nil(t, got)
}

func TestWrongSenderFails(t *testing.T) {
	alice := keyPair(t)
	bob := keyPair(t)
	mallory := keyPair(t)

	env, err := dm.Encrypt([]byte("from alice"), bob.Public, alice.Secret)
	require.NoError(t, err)

	_, err = dm.Decrypt(env.Ciphertext, env.Nonce, mallory.Public, bob.Secret)
	require.ErrorIs(t, err, domain.ErrDecryption)
}

func TestTamperingFails(t *testing.T) {
	alice := keyPair(t)
	bob := keyPair(t)

	env, err := dm.Encrypt([]byte("integrity"), bob.Public, alice.Secret)
	require.NoError(t, err)

	flipped := append([]byte(nil), env.Ciphertext...)
	flipped[len(flipped)-1] ^= 0x01
	_, err = dm.Decrypt(flipped, env.Nonce, alice.Public, bob.Secret)
	require.ErrorIs(t, err, domain.ErrDecryption)

	nonce := env.Nonce
	nonce[0] ^= 0x01
	_, err = dm.Decrypt(env.Ciphertext, nonce, alice.Public, bob.Secret)
	require.ErrorIs(t, err, domain.ErrDecryption)

	_, err = dm.Decrypt(env.Ciphertext[:dm.Overhead-1], env.Nonce, alice.Public, bob.Secret)
	require.ErrorIs(t, err, domain.ErrDecryption)
}

func TestEncryptDoesNotWipeCallerKey(t *testing.T) {
	alice := keyPair(t)
	bob := keyPair(t)
	before := alice.Secret

	_, err := dm.Encrypt([]byte("x"), bob.Public, alice.Secret)
	require.NoError(t, err)
	require.Equal(t, before, alice.Secret)
}
