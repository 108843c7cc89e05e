// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/tokenacl/internal/app"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// Submitter signs instructions into one transaction and submits it.
type Submitter interface {
	Send(
		ctx context.Context,
		feePayer solana.PrivateKey,
		instructions []ledgerDomain.Instruction,
		signers ...solana.PrivateKey,
	) (*ledgerDomain.TransactionRecord, error)
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// ParsePublicKey parses a base58 flag value.
func ParsePublicKey(flag, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return key, nil
}

// ParseOptionalPublicKey parses a base58 flag value, returning fallback when it is empty.
func ParseOptionalPublicKey(flag, value string, fallback solana.PublicKey) (solana.PublicKey, error) {
	if value == "" {
		return fallback, nil
	}
	return ParsePublicKey(flag, value)
}

// transactionOutput describes a committed transaction to the operator.
type transactionOutput struct {
	Message       string `json:"-"`
	Mint          string `json:"mint,omitempty"`
	TokenAccount  string `json:"token_account,omitempty"`
	Signature     string `json:"signature"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// submit sends instructions signed by signer and extraSigners, then prints out
// completed with the committed record.
func submit(
	ctx context.Context,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	format string,
	out transactionOutput,
	signer solana.PrivateKey,
	instructions []ledgerDomain.Instruction,
	extraSigners ...solana.PrivateKey,
) error {
	record, err := sender.Send(ctx, signer, instructions, extraSigners...)
	if err != nil {
		if record != nil {
			logger.Error("transaction failed",
				slog.String("transaction_id", record.ID.String()),
				slog.String("signature", record.Signature),
				slog.Any("error", err),
			)
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	logger.Info("transaction committed",
		slog.String("transaction_id", record.ID.String()),
		slog.String("signature", record.Signature),
	)

	// Fill in the committed record
	out.Signature = record.Signature
	out.TransactionID = record.ID.String()
	out.Status = string(record.Status)

	// Output result based on format
	if format == "json" {
		return writeJSON(writer, out)
	}

	_, _ = fmt.Fprintf(writer, "\n%s\n", out.Message)
	if out.Mint != "" {
		_, _ = fmt.Fprintf(writer, "Mint: %s\n", out.Mint)
	}
	if out.TokenAccount != "" {
		_, _ = fmt.Fprintf(writer, "Token Account: %s\n", out.TokenAccount)
	}
	_, _ = fmt.Fprintf(writer, "Signature: %s\n", out.Signature)
	_, err = fmt.Fprintf(writer, "Transaction ID: %s\n", out.TransactionID)
	return err
}

// writeJSON outputs v as indented JSON for machine consumption.
func writeJSON(writer io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(writer, string(jsonBytes))
	return err
}
