package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	ledgerService "github.com/allisson/tokenacl/internal/ledger/service"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
	tokenService "github.com/allisson/tokenacl/internal/token/service"
)

// CreateMintInput describes a new mint. New token accounts of the mint start frozen.
type CreateMintInput struct {
	Mint            solana.PrivateKey
	Decimals        uint8
	MintAuthority   solana.PublicKey
	FreezeAuthority solana.PublicKey
}

// RunCreateMint allocates and initializes a default-frozen mint paid for by payer.
func RunCreateMint(
	ctx context.Context,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	payer solana.PrivateKey,
	input CreateMintInput,
	format string,
) error {
	frozen := tokenDomain.AccountStateFrozen
	layout := &tokenDomain.Mint{DefaultAccountState: &frozen}
	mint := input.Mint.PublicKey()
	freezeAuthority := input.FreezeAuthority

	// The extension must be initialized before the base mint
	instructions := []ledgerDomain.Instruction{
		ledgerService.NewCreateAccountInstruction(payer.PublicKey(), mint, uint64(layout.Size()), tokenDomain.ProgramID),
		tokenService.NewInitializeDefaultAccountStateInstruction(mint, frozen),
		tokenService.NewInitializeMintInstruction(mint, input.Decimals, input.MintAuthority, &freezeAuthority),
	}

	return submit(ctx, sender, logger, writer, format, transactionOutput{
		Message: "Mint created successfully!",
		Mint:    mint.String(),
	}, payer, instructions, input.Mint)
}
