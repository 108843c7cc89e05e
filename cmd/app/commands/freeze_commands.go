package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/allisson/tokenacl/internal/acl/client"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
)

// TokenTarget names the token account a freeze or thaw acts on. An empty
// TokenAccount means the associated token account of Owner.
type TokenTarget struct {
	Mint         solana.PublicKey
	Owner        solana.PublicKey
	TokenAccount solana.PublicKey
}

// Resolve returns the token account address of the target.
func (t TokenTarget) Resolve() (solana.PublicKey, error) {
	if !t.TokenAccount.IsZero() {
		return t.TokenAccount, nil
	}
	if t.Owner.IsZero() {
		return solana.PublicKey{}, errors.New("either --token-account or --owner is required")
	}
	address, _, err := tokenDomain.FindAssociatedTokenAddress(t.Owner, t.Mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return address, nil
}

// RunFreeze freezes a token account with the config authority's signature.
func RunFreeze(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	target TokenTarget,
	format string,
) error {
	return runPermissioned(ctx, builder.Freeze, sender, logger, writer, signer, target, "Token account frozen successfully!", format)
}

// RunThaw thaws a token account with the config authority's signature.
func RunThaw(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	target TokenTarget,
	format string,
) error {
	return runPermissioned(ctx, builder.Thaw, sender, logger, writer, signer, target, "Token account thawed successfully!", format)
}

func runPermissioned(
	ctx context.Context,
	build func(authority, mint, tokenAccount solana.PublicKey) (ledgerDomain.Instruction, error),
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	target TokenTarget,
	message string,
	format string,
) error {
	tokenAccount, err := target.Resolve()
	if err != nil {
		return err
	}
	ix, err := build(signer.PublicKey(), target.Mint, tokenAccount)
	if err != nil {
		return err
	}
	return submit(ctx, sender, logger, writer, format, transactionOutput{
		Message:      message,
		Mint:         target.Mint.String(),
		TokenAccount: tokenAccount.String(),
	}, signer, []ledgerDomain.Instruction{ix})
}

// RunFreezePermissionless asks the mint's gating program to approve freezing the
// target on behalf of the signer.
func RunFreezePermissionless(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	target TokenTarget,
	idempotent bool,
	format string,
) error {
	return runPermissionless(ctx, builder.FreezePermissionless, sender, logger, writer, signer, target, idempotent,
		"Token account frozen successfully!", format)
}

// RunThawPermissionless asks the mint's gating program to approve thawing the
// target on behalf of the signer.
func RunThawPermissionless(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	target TokenTarget,
	idempotent bool,
	format string,
) error {
	return runPermissionless(ctx, builder.ThawPermissionless, sender, logger, writer, signer, target, idempotent,
		"Token account thawed successfully!", format)
}

func runPermissionless(
	ctx context.Context,
	build func(ctx context.Context, authority, mint, tokenAccount, owner solana.PublicKey, idempotent bool) (ledgerDomain.Instruction, error),
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	target TokenTarget,
	idempotent bool,
	message string,
	format string,
) error {
	if target.Owner.IsZero() {
		return errors.New("--owner is required for permissionless operations")
	}
	tokenAccount, err := target.Resolve()
	if err != nil {
		return err
	}
	ix, err := build(ctx, signer.PublicKey(), target.Mint, tokenAccount, target.Owner, idempotent)
	if err != nil {
		return fmt.Errorf("failed to build instruction: %w", err)
	}
	return submit(ctx, sender, logger, writer, format, transactionOutput{
		Message:      message,
		Mint:         target.Mint.String(),
		TokenAccount: tokenAccount.String(),
	}, signer, []ledgerDomain.Instruction{ix})
}

// RunCreateATAAndThawPermissionless creates the associated token account of owner,
// paid for by the signer, and thaws it in the same transaction.
func RunCreateATAAndThawPermissionless(
	ctx context.Context,
	builder *client.Builder,
	sender Submitter,
	logger *slog.Logger,
	writer io.Writer,
	signer solana.PrivateKey,
	mint, owner solana.PublicKey,
	idempotent bool,
	format string,
) error {
	tokenAccount, err := TokenTarget{Mint: mint, Owner: owner}.Resolve()
	if err != nil {
		return err
	}
	instructions, err := builder.CreateATAAndThawPermissionless(ctx, signer.PublicKey(), owner, mint, idempotent)
	if err != nil {
		return fmt.Errorf("failed to build instructions: %w", err)
	}
	return submit(ctx, sender, logger, writer, format, transactionOutput{
		Message:      "Token account created and thawed successfully!",
		Mint:         mint.String(),
		TokenAccount: tokenAccount.String(),
	}, signer, instructions)
}
