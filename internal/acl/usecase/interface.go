// Package usecase implements the engine: config lifecycle, authority-signed freeze and
// thaw, the permissionless freeze/thaw state machine and the runtime program that
// decodes engine instructions.
package usecase

import (
	"context"

	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
)

// AccountRepository is the ledger storage the engine reads and writes.
type AccountRepository interface {
	Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error)
	Update(ctx context.Context, account *ledgerDomain.Account) error
}

// SystemProgram allocates and releases engine-owned addresses.
type SystemProgram interface {
	CreateAccount(
		ctx context.Context,
		payer, address solana.PublicKey,
		space int,
		owner solana.PublicKey,
		signers ledgerDomain.SignerSet,
	) error
	Close(ctx context.Context, address, receiver solana.PublicKey) error
}

// TokenProgram is the token component the engine holds the freeze authority of.
type TokenProgram interface {
	ProgramID() solana.PublicKey
	GetMint(ctx context.Context, address solana.PublicKey) (*tokenDomain.Mint, error)
	GetAccount(ctx context.Context, address solana.PublicKey) (*tokenDomain.Account, error)
	SetFreezeAuthority(
		ctx context.Context,
		mint, authority solana.PublicKey,
		newAuthority *solana.PublicKey,
		signers ledgerDomain.SignerSet,
	) error
	FreezeAccount(ctx context.Context, account, mint, authority solana.PublicKey, signers ledgerDomain.SignerSet) error
	ThawAccount(ctx context.Context, account, mint, authority solana.PublicKey, signers ledgerDomain.SignerSet) error
}

// GuardManager creates and destroys guard records.
type GuardManager interface {
	Set(ctx context.Context, payer, tokenAccount, guard solana.PublicKey, signers ledgerDomain.SignerSet) error
	Clear(ctx context.Context, guard, receiver solana.PublicKey) error
}

// GateRegistry resolves gating program ids.
type GateRegistry interface {
	Get(id solana.PublicKey) (gateDomain.DecisionProgram, error)
}

// CreateConfigInput carries the accounts and payload of CreateConfig.
type CreateConfigInput struct {
	Payer         solana.PublicKey
	Authority     solana.PublicKey
	Mint          solana.PublicKey
	MintConfig    solana.PublicKey
	SystemProgram solana.PublicKey
	TokenProgram  solana.PublicKey
	GatingProgram solana.PublicKey
	Signers       ledgerDomain.SignerSet
}

// DeleteConfigInput carries the accounts and payload of DeleteConfig.
type DeleteConfigInput struct {
	Authority          solana.PublicKey
	Receiver           solana.PublicKey
	Mint               solana.PublicKey
	MintConfig         solana.PublicKey
	TokenProgram       solana.PublicKey
	NewFreezeAuthority solana.PublicKey
	Signers            ledgerDomain.SignerSet
}

// UpdateConfigInput carries the accounts of the config mutations.
type UpdateConfigInput struct {
	Authority  solana.PublicKey
	MintConfig solana.PublicKey
	Signers    ledgerDomain.SignerSet
}

// FreezeInput carries the accounts of authority-signed Freeze and Thaw.
type FreezeInput struct {
	Authority    solana.PublicKey
	Mint         solana.PublicKey
	TokenAccount solana.PublicKey
	MintConfig   solana.PublicKey
	TokenProgram solana.PublicKey
	Signers      ledgerDomain.SignerSet
}

// PermissionlessInput carries the accounts and payload of the permissionless
// operations. Remaining holds every account after the gating program; the descriptor
// list account and the gating program's extras are looked up there.
type PermissionlessInput struct {
	Authority         solana.PublicKey
	Mint              solana.PublicKey
	TokenAccount      solana.PublicKey
	Guard             solana.PublicKey
	TokenAccountOwner solana.PublicKey
	MintConfig        solana.PublicKey
	TokenProgram      solana.PublicKey
	SystemProgram     solana.PublicKey
	GatingProgram     solana.PublicKey
	Remaining         []ledgerDomain.AccountMeta
	Idempotent        bool
	Signers           ledgerDomain.SignerSet
}

// ConfigUseCase manages the per-mint config record.
type ConfigUseCase interface {
	// Create takes custody of the mint's freeze authority and records the config.
	Create(ctx context.Context, in CreateConfigInput) (*aclDomain.MintConfig, error)
	// Delete releases the config and, when custody is intact, hands the freeze
	// authority to in.NewFreezeAuthority.
	Delete(ctx context.Context, in DeleteConfigInput) (*aclDomain.DeleteConfigResult, error)
	SetAuthority(ctx context.Context, in UpdateConfigInput, newAuthority solana.PublicKey) (*aclDomain.MintConfig, error)
	SetGatingProgram(ctx context.Context, in UpdateConfigInput, gatingProgram solana.PublicKey) (*aclDomain.MintConfig, error)
	TogglePermissionlessInstructions(
		ctx context.Context,
		in UpdateConfigInput,
		enableFreeze, enableThaw bool,
	) (*aclDomain.MintConfig, error)
	// Get returns the config of mint.
	Get(ctx context.Context, mint solana.PublicKey) (*aclDomain.MintConfig, error)
}

// FreezeUseCase performs authority-signed freeze and thaw.
type FreezeUseCase interface {
	Freeze(ctx context.Context, in FreezeInput) error
	Thaw(ctx context.Context, in FreezeInput) error
}

// PermissionlessUseCase runs the gated freeze and thaw state machine.
type PermissionlessUseCase interface {
	FreezePermissionless(ctx context.Context, in PermissionlessInput) error
	ThawPermissionless(ctx context.Context, in PermissionlessInput) error
}
