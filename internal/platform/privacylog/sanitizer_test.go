package privacylog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizer_RedactsAndPseudonymises(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Info("sent",
		"secret_key", "c2VjcmV0",
		"ephemeral_private", "abc",
		"plaintext", "hello",
		"identity", "alice",
		"bytes", 42,
	)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, redactedValue, rec["secret_key"])
	require.Equal(t, redactedValue, rec["ephemeral_private"])
	require.Equal(t, redactedValue, rec["plaintext"])
	require.Equal(t, Pseudonym("alice"), rec["identity_fp"])
	require.NotContains(t, rec, "identity")
	require.EqualValues(t, 42, rec["bytes"])
	require.NotContains(t, buf.String(), "hello")
	require.NotContains(t, buf.String(), "alice")
}

func TestSanitizer_WithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil))).
		With("passphrase", "hunter2").
		WithGroup("room")

	logger.Info("joined", slog.Group("keys", slog.String("room_key_secret", "k")))
	require.NotContains(t, buf.String(), "hunter2")
	require.NotContains(t, buf.String(), `"k"`)
}

func TestPseudonym_Stable(t *testing.T) {
	require.Equal(t, Pseudonym("bob"), Pseudonym(" bob "))
	require.NotEqual(t, Pseudonym("bob"), Pseudonym("alice"))
	require.Empty(t, Pseudonym(""))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "token", "t")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
	require.NotContains(t, buf.String(), `"t"`)

	_, err = NewLogger(&buf, "loud", "text")
	require.Error(t, err)
	_, err = NewLogger(&buf, "info", "xml")
	require.Error(t, err)
}
