package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	ledgerUseCase "github.com/allisson/tokenacl/internal/ledger/usecase"
)

// RunFundAccount credits lamports to address without a source account, creating
// the system account when it does not exist yet.
func RunFundAccount(
	ctx context.Context,
	accounts ledgerUseCase.AccountUseCase,
	logger *slog.Logger,
	writer io.Writer,
	address solana.PublicKey,
	lamports uint64,
	format string,
) error {
	account, err := accounts.Fund(ctx, address, lamports)
	if err != nil {
		return fmt.Errorf("failed to fund account: %w", err)
	}

	logger.Info("account funded",
		slog.String("address", address.String()),
		slog.Uint64("lamports", lamports),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"address":  account.Address.String(),
			"lamports": account.Lamports,
		})
	}

	_, _ = fmt.Fprintln(writer, "\nAccount funded successfully!")
	_, _ = fmt.Fprintf(writer, "Address: %s\n", account.Address)
	_, err = fmt.Fprintf(writer, "Balance: %d lamports\n", account.Lamports)
	return err
}
