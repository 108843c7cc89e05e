package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/allisson/tokenacl/internal/acl/client"
	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	"github.com/allisson/tokenacl/internal/acl/http/dto"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// RunCreateConfig places mint under engine custody. The signer pays for the record
// and must be the current freeze authority of the mint.
func RunCreateConfig(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	mint, gatingProgram solana.PublicKey,
	format string,
) error {
	ix, err := builder.CreateConfig(signer.PublicKey(), signer.PublicKey(), mint, gatingProgram)
	if err != nil {
		return err
	}
	return submit(ctx, sender, logger, writer, format, transactionOutput{
		Message: "Mint config created successfully!",
		Mint:    mint.String(),
	}, signer, []ledgerDomain.Instruction{ix})
}

// RunDeleteConfig releases mint from engine custody, handing the freeze authority
// to newFreezeAuthority and the record deposit to receiver.
func RunDeleteConfig(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	mint, receiver, newFreezeAuthority solana.PublicKey,
	format string,
) error {
	ix, err := builder.DeleteConfig(signer.PublicKey(), receiver, mint, newFreezeAuthority)
	if err != nil {
		return err
	}
	return submit(ctx, sender, logger, writer, format, transactionOutput{
		Message: "Mint config deleted successfully!",
		Mint:    mint.String(),
	}, signer, []ledgerDomain.Instruction{ix})
}

// RunSetAuthority hands the config of mint to newAuthority.
func RunSetAuthority(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	mint, newAuthority solana.PublicKey,
	format string,
) error {
	ix, err := builder.SetAuthority(signer.PublicKey(), mint, newAuthority)
	if err != nil {
		return err
	}
	return submit(ctx, sender, logger, writer, format, transactionOutput{
		Message: "Authority updated successfully!",
		Mint:    mint.String(),
	}, signer, []ledgerDomain.Instruction{ix})
}

// RunSetGatingProgram replaces the decision program of mint. The zero key disables
// permissionless operations.
func RunSetGatingProgram(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	mint, gatingProgram solana.PublicKey,
	format string,
) error {
	ix, err := builder.SetGatingProgram(signer.PublicKey(), mint, gatingProgram)
	if err != nil {
		return err
	}
	return submit(ctx, sender, logger, writer, format, transactionOutput{
		Message: "Gating program updated successfully!",
		Mint:    mint.String(),
	}, signer, []ledgerDomain.Instruction{ix})
}

// RunSetInstructions sets both permissionless flags of mint.
func RunSetInstructions(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	mint solana.PublicKey,
	enableFreeze, enableThaw bool,
	format string,
) error {
	ix, err := builder.TogglePermissionlessInstructions(signer.PublicKey(), mint, enableFreeze, enableThaw)
	if err != nil {
		return err
	}
	return submit(ctx, sender, logger, writer, format, transactionOutput{
		Message: "Permissionless instructions updated successfully!",
		Mint:    mint.String(),
	}, signer, []ledgerDomain.Instruction{ix})
}

// RunGetConfig prints the config record of mint.
func RunGetConfig(
	ctx context.Context,
	builder *client.Builder,
	writer io.Writer,
	mint solana.PublicKey,
	format string,
) error {
	config, err := builder.MintConfig(ctx, mint)
	if err != nil {
		return fmt.Errorf("failed to get mint config: %w", err)
	}
	address, _, err := aclDomain.FindMintConfigAddress(builder.ProgramID(), mint)
	if err != nil {
		return fmt.Errorf("failed to derive mint config address: %w", err)
	}

	response := dto.MapMintConfigToResponse(address, config)
	if format == "json" {
		return writeJSON(writer, response)
	}

	gatingProgram := response.GatingProgram
	if gatingProgram == "" {
		gatingProgram = "(none)"
	}
	_, _ = fmt.Fprintf(writer, "Address: %s\n", response.Address)
	_, _ = fmt.Fprintf(writer, "Mint: %s\n", response.Mint)
	_, _ = fmt.Fprintf(writer, "Authority: %s\n", response.Authority)
	_, _ = fmt.Fprintf(writer, "Gating Program: %s\n", gatingProgram)
	_, _ = fmt.Fprintf(writer, "Bump: %d\n", response.Bump)
	_, _ = fmt.Fprintf(writer, "Permissionless Freeze: %t\n", response.EnablePermissionlessFreeze)
	_, err = fmt.Fprintf(writer, "Permissionless Thaw: %t\n", response.EnablePermissionlessThaw)
	return err
}
