// Package client builds engine instructions off-chain and submits them as signed
// transactions.
//
// The permissionless builders resolve the gating program's extra accounts with the same
// resolver the engine runs, so the engine finds every account it derives.
package client

import (
	"context"

	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	apperrors "github.com/allisson/tokenacl/internal/errors"
	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	resolutionDomain "github.com/allisson/tokenacl/internal/resolution/domain"
	resolutionService "github.com/allisson/tokenacl/internal/resolution/service"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
	tokenService "github.com/allisson/tokenacl/internal/token/service"
)

// Builder creates engine instructions for one engine program id.
type Builder struct {
	programID solana.PublicKey
	fetcher   resolutionService.AccountDataFetcher
}

// NewBuilder creates a Builder reading ledger state through fetcher.
func NewBuilder(programID solana.PublicKey, fetcher resolutionService.AccountDataFetcher) *Builder {
	return &Builder{programID: programID, fetcher: fetcher}
}

// ProgramID returns the engine program id instructions are addressed to.
func (b *Builder) ProgramID() solana.PublicKey {
	return b.programID
}

func (b *Builder) instruction(data *aclDomain.InstructionData, accounts ...ledgerDomain.AccountMeta) ledgerDomain.Instruction {
	return ledgerDomain.Instruction{ProgramID: b.programID, Accounts: accounts, Data: data.Marshal()}
}

func (b *Builder) configAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := aclDomain.FindMintConfigAddress(b.programID, mint)
	if err != nil {
		return solana.PublicKey{}, apperrors.Wrap(err, "failed to derive mint config address")
	}
	return address, nil
}

// CreateConfig builds the instruction placing mint under engine custody.
func (b *Builder) CreateConfig(payer, authority, mint, gatingProgram solana.PublicKey) (ledgerDomain.Instruction, error) {
	config, err := b.configAddress(mint)
	if err != nil {
		return ledgerDomain.Instruction{}, err
	}
	return b.instruction(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeCreateConfig, Key: gatingProgram},
		ledgerDomain.NewAccountMeta(payer, true, true),
		ledgerDomain.NewAccountMeta(authority, false, true),
		ledgerDomain.NewAccountMeta(mint, true, false),
		ledgerDomain.NewAccountMeta(config, true, false),
		ledgerDomain.NewAccountMeta(solana.SystemProgramID, false, false),
		ledgerDomain.NewAccountMeta(tokenDomain.ProgramID, false, false),
	), nil
}

// DeleteConfig builds the instruction releasing mint from engine custody. The freeze
// authority moves to newFreezeAuthority and the record deposit goes to receiver.
func (b *Builder) DeleteConfig(authority, receiver, mint, newFreezeAuthority solana.PublicKey) (ledgerDomain.Instruction, error) {
	config, err := b.configAddress(mint)
	if err != nil {
		return ledgerDomain.Instruction{}, err
	}
	return b.instruction(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeDeleteConfig, Key: newFreezeAuthority},
		ledgerDomain.NewAccountMeta(authority, false, true),
		ledgerDomain.NewAccountMeta(receiver, true, false),
		ledgerDomain.NewAccountMeta(mint, true, false),
		ledgerDomain.NewAccountMeta(config, true, false),
		ledgerDomain.NewAccountMeta(tokenDomain.ProgramID, false, false),
	), nil
}

func (b *Builder) update(data *aclDomain.InstructionData, authority, mint solana.PublicKey) (ledgerDomain.Instruction, error) {
	config, err := b.configAddress(mint)
	if err != nil {
		return ledgerDomain.Instruction{}, err
	}
	return b.instruction(data,
		ledgerDomain.NewAccountMeta(authority, false, true),
		ledgerDomain.NewAccountMeta(config, true, false),
	), nil
}

// SetAuthority builds the instruction handing the config of mint to newAuthority.
func (b *Builder) SetAuthority(authority, mint, newAuthority solana.PublicKey) (ledgerDomain.Instruction, error) {
	return b.update(&aclDomain.InstructionData{Opcode: aclDomain.OpcodeSetAuthority, Key: newAuthority}, authority, mint)
}

// SetGatingProgram builds the instruction replacing the decision program of mint.
// The zero key disables permissionless operations.
func (b *Builder) SetGatingProgram(authority, mint, gatingProgram solana.PublicKey) (ledgerDomain.Instruction, error) {
	return b.update(&aclDomain.InstructionData{Opcode: aclDomain.OpcodeSetGatingProgram, Key: gatingProgram}, authority, mint)
}

// TogglePermissionlessInstructions builds the instruction setting both permissionless flags.
func (b *Builder) TogglePermissionlessInstructions(authority, mint solana.PublicKey, enableFreeze, enableThaw bool) (ledgerDomain.Instruction, error) {
	return b.update(&aclDomain.InstructionData{
		Opcode:       aclDomain.OpcodeTogglePermissionlessInstructions,
		EnableFreeze: enableFreeze,
		EnableThaw:   enableThaw,
	}, authority, mint)
}

func (b *Builder) permissioned(opcode aclDomain.Opcode, authority, mint, tokenAccount solana.PublicKey) (ledgerDomain.Instruction, error) {
	config, err := b.configAddress(mint)
	if err != nil {
		return ledgerDomain.Instruction{}, err
	}
	return b.instruction(
		&aclDomain.InstructionData{Opcode: opcode},
		ledgerDomain.NewAccountMeta(authority, false, true),
		ledgerDomain.NewAccountMeta(mint, false, false),
		ledgerDomain.NewAccountMeta(tokenAccount, true, false),
		ledgerDomain.NewAccountMeta(config, false, false),
		ledgerDomain.NewAccountMeta(tokenDomain.ProgramID, false, false),
	), nil
}

// Freeze builds the config authority's freeze instruction.
func (b *Builder) Freeze(authority, mint, tokenAccount solana.PublicKey) (ledgerDomain.Instruction, error) {
	return b.permissioned(aclDomain.OpcodeFreeze, authority, mint, tokenAccount)
}

// Thaw builds the config authority's thaw instruction.
func (b *Builder) Thaw(authority, mint, tokenAccount solana.PublicKey) (ledgerDomain.Instruction, error) {
	return b.permissioned(aclDomain.OpcodeThaw, authority, mint, tokenAccount)
}

// MintConfig reads the config record of mint. A missing record yields
// ErrMintConfigNotFound.
func (b *Builder) MintConfig(ctx context.Context, mint solana.PublicKey) (*aclDomain.MintConfig, error) {
	address, err := b.configAddress(mint)
	if err != nil {
		return nil, err
	}
	data, found, err := b.fetcher.FetchAccountData(ctx, address)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, aclDomain.ErrMintConfigNotFound
	}
	return aclDomain.UnmarshalMintConfig(data)
}

// ThawPermissionless builds a permissionless thaw of tokenAccount requested by authority.
func (b *Builder) ThawPermissionless(
	ctx context.Context,
	authority, mint, tokenAccount, owner solana.PublicKey,
	idempotent bool,
) (ledgerDomain.Instruction, error) {
	return b.permissionless(ctx, b.fetcher, gateDomain.OperationThaw, authority, mint, tokenAccount, owner, idempotent)
}

// FreezePermissionless builds a permissionless freeze of tokenAccount requested by authority.
func (b *Builder) FreezePermissionless(
	ctx context.Context,
	authority, mint, tokenAccount, owner solana.PublicKey,
	idempotent bool,
) (ledgerDomain.Instruction, error) {
	return b.permissionless(ctx, b.fetcher, gateDomain.OperationFreeze, authority, mint, tokenAccount, owner, idempotent)
}

// CreateATAAndThawPermissionless builds the pair of instructions creating the associated
// token account of owner and thawing it in the same transaction. The extras are resolved
// against a frozen account the mint's default state would produce, since the account
// does not exist yet when the instructions are built.
func (b *Builder) CreateATAAndThawPermissionless(
	ctx context.Context,
	payer, owner, mint solana.PublicKey,
	idempotent bool,
) ([]ledgerDomain.Instruction, error) {
	tokenAccount, _, err := tokenDomain.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive associated token address")
	}

	mocked := &tokenDomain.Account{Mint: mint, Owner: owner, State: tokenDomain.AccountStateFrozen}
	fetcher := resolutionService.WithOverrides(b.fetcher, map[solana.PublicKey][]byte{
		tokenAccount: mocked.Marshal(),
	})

	thaw, err := b.permissionless(ctx, fetcher, gateDomain.OperationThaw, payer, mint, tokenAccount, owner, idempotent)
	if err != nil {
		return nil, err
	}
	return []ledgerDomain.Instruction{
		tokenService.NewCreateAssociatedAccountInstruction(payer, owner, mint, true),
		thaw,
	}, nil
}

func (b *Builder) permissionless(
	ctx context.Context,
	fetcher resolutionService.AccountDataFetcher,
	op gateDomain.Operation,
	authority, mint, tokenAccount, owner solana.PublicKey,
	idempotent bool,
) (ledgerDomain.Instruction, error) {
	config, err := b.MintConfig(ctx, mint)
	if err != nil {
		return ledgerDomain.Instruction{}, err
	}
	configAddress, err := b.configAddress(mint)
	if err != nil {
		return ledgerDomain.Instruction{}, err
	}
	guard, _, err := aclDomain.FindGuardAddress(b.programID, tokenAccount)
	if err != nil {
		return ledgerDomain.Instruction{}, apperrors.Wrap(err, "failed to derive guard address")
	}

	opcode := aclDomain.OpcodeThawPermissionless
	if op == gateDomain.OperationFreeze {
		opcode = aclDomain.OpcodeFreezePermissionless
	}
	ix := b.instruction(
		&aclDomain.InstructionData{Opcode: opcode, Idempotent: idempotent},
		ledgerDomain.NewAccountMeta(authority, true, true),
		ledgerDomain.NewAccountMeta(mint, false, false),
		ledgerDomain.NewAccountMeta(tokenAccount, true, false),
		ledgerDomain.NewAccountMeta(guard, true, false),
		ledgerDomain.NewAccountMeta(owner, false, false),
		ledgerDomain.NewAccountMeta(configAddress, false, false),
		ledgerDomain.NewAccountMeta(tokenDomain.ProgramID, false, false),
		ledgerDomain.NewAccountMeta(solana.SystemProgramID, false, false),
		ledgerDomain.NewAccountMeta(config.GatingProgram, false, false),
	)

	if !config.HasGatingProgram() {
		return ix, nil
	}
	extras, err := resolveExtras(ctx, fetcher, op, config.GatingProgram, authority, mint, tokenAccount, owner, guard)
	if err != nil {
		return ledgerDomain.Instruction{}, err
	}
	ix.Accounts = append(ix.Accounts, extras...)
	return ix, nil
}

// resolveExtras returns the descriptor list account followed by the accounts it
// resolves to. Both are omitted when the gating program keeps no list for the mint.
func resolveExtras(
	ctx context.Context,
	fetcher resolutionService.AccountDataFetcher,
	op gateDomain.Operation,
	gate, authority, mint, tokenAccount, owner, guard solana.PublicKey,
) ([]ledgerDomain.AccountMeta, error) {
	metasAddress, _, err := gateDomain.FindExtraMetasAddress(op, mint, gate)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive extra metas address")
	}
	data, found, err := fetcher.FetchAccountData(ctx, metasAddress)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	list, err := resolutionDomain.UnmarshalList(data, op.Discriminator())
	if err != nil {
		return nil, err
	}

	decision := gateDomain.NewDecisionInstruction(op, gate, authority, tokenAccount, mint, owner, guard)
	descriptor := ledgerDomain.NewAccountMeta(metasAddress, false, false)
	previous := append(decision.Accounts, descriptor)

	resolved, err := resolutionService.NewResolver(fetcher).Resolve(ctx, list.Metas, previous, decision.Data, gate)
	if err != nil {
		return nil, err
	}
	return append([]ledgerDomain.AccountMeta{descriptor}, resolved...), nil
}
