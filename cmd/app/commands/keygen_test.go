package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/tokenacl/internal/keys"
)

func TestRunKeygen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "nested", "id.json")

	var out bytes.Buffer
	require.NoError(t, RunKeygen(logger, &out, path, false, "json"))

	var result map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, path, result["path"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	key, err := keys.NewLoader("").Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, result["public_key"], key.PublicKey().String())

	t.Run("refuses to overwrite", func(t *testing.T) {
		err := RunKeygen(logger, &out, path, false, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refusing to overwrite")
	})

	t.Run("force overwrites", func(t *testing.T) {
		out.Reset()
		require.NoError(t, RunKeygen(logger, &out, path, true, "text"))
		assert.Contains(t, out.String(), "Public Key: ")

		replaced, err := keys.NewLoader("").Load(context.Background(), path)
		require.NoError(t, err)
		assert.NotEqual(t, key.PublicKey(), replaced.PublicKey())
	})
}
