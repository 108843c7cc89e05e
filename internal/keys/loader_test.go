package keys

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	apperrors "github.com/allisson/tokenacl/internal/errors"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	wallet := solana.NewWallet()
	plaintext, err := MarshalKeygen(wallet.PrivateKey)
	require.NoError(t, err)

	t.Run("Success_Plaintext", func(t *testing.T) {
		key, err := NewLoader("").Load(ctx, writeFile(t, plaintext))
		require.NoError(t, err)
		assert.Equal(t, wallet.PublicKey(), key.PublicKey())
	})

	t.Run("Success_HomeDirExpansion", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		require.NoError(t, os.WriteFile(filepath.Join(home, "id.json"), plaintext, 0o600))

		key, err := NewLoader("").Load(ctx, "~/id.json")
		require.NoError(t, err)
		assert.Equal(t, wallet.PublicKey(), key.PublicKey())
	})

	t.Run("Success_Encrypted", func(t *testing.T) {
		keyURI := generateLocalSecretsURI(t)
		keeper, err := secrets.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		ciphertext, err := keeper.Encrypt(ctx, plaintext)
		require.NoError(t, err)

		key, err := NewLoader(keyURI).Load(ctx, writeFile(t, ciphertext))
		require.NoError(t, err)
		assert.Equal(t, wallet.PublicKey(), key.PublicKey())
	})

	t.Run("Error_WrongKMSKey", func(t *testing.T) {
		keeper, err := secrets.OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()
		ciphertext, err := keeper.Encrypt(ctx, plaintext)
		require.NoError(t, err)

		_, err = NewLoader(generateLocalSecretsURI(t)).Load(ctx, writeFile(t, ciphertext))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decrypt keypair")
	})

	t.Run("Error_InvalidKMSURI", func(t *testing.T) {
		_, err := NewLoader("invalid://uri").Load(ctx, writeFile(t, plaintext))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})

	t.Run("Error_MissingFile", func(t *testing.T) {
		_, err := NewLoader("").Load(ctx, filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read keypair file")
	})
}

func TestParseKeygen(t *testing.T) {
	wallet := solana.NewWallet()

	t.Run("Success", func(t *testing.T) {
		content, err := MarshalKeygen(wallet.PrivateKey)
		require.NoError(t, err)

		key, err := ParseKeygen(content)
		require.NoError(t, err)
		assert.Equal(t, wallet.PrivateKey, key)
	})

	tests := []struct {
		name    string
		content []byte
	}{
		{name: "not json", content: []byte("nope")},
		{name: "short", content: []byte("[1,2,3]")},
		{name: "out of range", content: []byte("[256]")},
	}
	for _, tt := range tests {
		t.Run("Error_"+tt.name, func(t *testing.T) {
			_, err := ParseKeygen(tt.content)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, ErrInvalidKeypair))
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		})
	}

	t.Run("Error_MismatchedPublicHalf", func(t *testing.T) {
		tampered := make(solana.PrivateKey, len(wallet.PrivateKey))
		copy(tampered, wallet.PrivateKey)
		tampered[63] ^= 0xff
		content, err := MarshalKeygen(tampered)
		require.NoError(t, err)

		_, err = ParseKeygen(content)
		assert.True(t, apperrors.Is(err, ErrInvalidKeypair))
	})
}
