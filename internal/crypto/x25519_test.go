package crypto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
)

func TestGenerateX25519(t *testing.T) {
	a, err := crypto.GenerateX25519()
	require.NoError(t, err)
	b, err := crypto.GenerateX25519()
	require.NoError(t, err)

	require.NotEqual(t, a.Public, b.Public)
	require.NoError(t, crypto.ValidateKeyPair(a))

	// Clamped per RFC 7748.
	require.Zero(t, a.Secret[0]&7)
	require.Equal(t, byte(64), a.Secret[31]&192)
}

func TestValidateKeyPair_Mismatch(t *testing.T) {
	a, err := crypto.GenerateX25519()
	require.NoError(t, err)
	b, err := crypto.GenerateX25519()
	require.NoError(t, err)

	err = crypto.ValidateKeyPair(domain.KeyPair{Public: a.Public, Secret: b.Secret})
	require.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestFingerprints(t *testing.T) {
	kp, err := crypto.GenerateX25519()
	require.NoError(t, err)

	fp := crypto.Fingerprint(kp.Public)
	require.Len(t, fp.String(), 20)
	require.Equal(t, fp, crypto.Fingerprint(kp.Public))

	id := crypto.IdentityID(kp.Public)
	require.True(t, strings.HasPrefix(id, "sc1"))
	require.Equal(t, id, crypto.IdentityID(kp.Public))
}
