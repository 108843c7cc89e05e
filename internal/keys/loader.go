// Package keys loads signer keypairs for CLI commands. Files use the Solana keygen JSON
// layout (a 64 element byte array) and may be stored as ciphertext sealed by a KMS key.
package keys

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/mitchellh/go-homedir"
	"gocloud.dev/secrets"

	apperrors "github.com/allisson/tokenacl/internal/errors"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// ErrInvalidKeypair indicates the keypair file content is not a keygen byte array.
var ErrInvalidKeypair = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid keypair")

// Loader reads keypair files, decrypting them when a KMS key URI is configured.
type Loader struct {
	kmsKeyURI string
}

// NewLoader creates a loader. An empty kmsKeyURI reads files as plaintext.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func NewLoader(kmsKeyURI string) *Loader {
	return &Loader{kmsKeyURI: kmsKeyURI}
}

// Load reads the keypair at path. A leading "~" expands to the user's home directory.
func (l *Loader) Load(ctx context.Context, path string) (solana.PrivateKey, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand keypair path: %w", err)
	}

	content, err := os.ReadFile(expanded) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}

	if l.kmsKeyURI != "" {
		content, err = l.decrypt(ctx, content)
		if err != nil {
			return nil, err
		}
	}

	return ParseKeygen(content)
}

func (l *Loader) decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	keeper, err := secrets.OpenKeeper(ctx, l.kmsKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keypair: %w", err)
	}
	return plaintext, nil
}

// ParseKeygen decodes keygen JSON into a private key and checks the embedded public half.
func ParseKeygen(content []byte) (solana.PrivateKey, error) {
	var values []byte
	if err := json.Unmarshal(content, &values); err != nil {
		return nil, apperrors.Wrap(ErrInvalidKeypair, err.Error())
	}
	if len(values) != 64 {
		return nil, apperrors.Wrapf(ErrInvalidKeypair, "expected 64 bytes, got %d", len(values))
	}

	derived := ed25519.NewKeyFromSeed(values[:ed25519.SeedSize])
	if !bytes.Equal(derived, values) {
		return nil, apperrors.Wrap(ErrInvalidKeypair, "public key does not match seed")
	}
	return solana.PrivateKey(values), nil
}

// MarshalKeygen encodes a private key in keygen JSON layout.
func MarshalKeygen(key solana.PrivateKey) ([]byte, error) {
	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}
	return json.Marshal(values)
}
