package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/mitchellh/go-homedir"

	"github.com/allisson/tokenacl/internal/keys"
)

// RunKeygen writes a fresh keypair to outfile in the CLI keypair format and prints
// its public key. An existing file is only replaced when force is set.
func RunKeygen(logger *slog.Logger, writer io.Writer, outfile string, force bool, format string) error {
	path, err := homedir.Expand(outfile)
	if err != nil {
		return fmt.Errorf("failed to expand keypair path: %w", err)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite %s (use --force)", path)
		}
	}

	// Generate keypair
	wallet := solana.NewWallet()
	content, err := keys.MarshalKeygen(wallet.PrivateKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create keypair directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write keypair: %w", err)
	}

	logger.Info("keypair written", slog.String("path", path))

	// Output result based on format
	if format == "json" {
		return writeJSON(writer, map[string]string{
			"path":       path,
			"public_key": wallet.PublicKey().String(),
		})
	}

	_, _ = fmt.Fprintf(writer, "Wrote new keypair to %s\n", path)
	_, err = fmt.Fprintf(writer, "Public Key: %s\n", wallet.PublicKey())
	return err
}
