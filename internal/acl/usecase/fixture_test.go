package usecase

import (
	"context"
	"log/slog"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	aclService "github.com/allisson/tokenacl/internal/acl/service"
	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	gateService "github.com/allisson/tokenacl/internal/gate/service"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	"github.com/allisson/tokenacl/internal/ledger/repository"
	ledgerService "github.com/allisson/tokenacl/internal/ledger/service"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
	tokenService "github.com/allisson/tokenacl/internal/token/service"
)

const fixtureBalance = 1_000_000_000

var programID = aclDomain.DefaultProgramID

type engineFixture struct {
	ctx            context.Context
	repo           *repository.MemoryAccountRepository
	system         *ledgerService.SystemService
	tokens         *tokenService.TokenService
	locker         *aclService.KeyedLocker
	deps           *gateService.AllowWithDeps
	configs        ConfigUseCase
	freezes        FreezeUseCase
	permissionless PermissionlessUseCase
	processor      *Processor
	payer          solana.PublicKey
	authority      solana.PublicKey
}

func newEngineFixture(t *testing.T, gates ...gateDomain.DecisionProgram) *engineFixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.Default()
	repo := repository.NewMemoryAccountRepository()
	system := ledgerService.NewSystemService(repo, logger)
	tokens := tokenService.NewTokenService(repo, system, logger)
	locker := aclService.NewKeyedLocker()
	guards := aclService.NewGuardManager(programID, repo, system, locker, logger)
	deps := gateService.NewAllowWithDeps(gateDomain.AllowWithDepsProgramID, programID, repo, system, logger)

	programs := append([]gateDomain.DecisionProgram{
		gateService.NewAlwaysAllow(gateDomain.AlwaysAllowProgramID),
		gateService.NewAlwaysBlock(gateDomain.AlwaysBlockProgramID, gateDomain.DefaultBlockCode),
		deps,
	}, gates...)
	registry, err := gateService.NewRegistry(programs...)
	require.NoError(t, err)

	f := &engineFixture{
		ctx:       ctx,
		repo:      repo,
		system:    system,
		tokens:    tokens,
		locker:    locker,
		deps:      deps,
		configs:   NewConfigUseCase(programID, repo, repo, system, tokens, logger),
		freezes:   NewFreezeUseCase(programID, repo, repo, tokens, logger),
		payer:     solana.NewWallet().PublicKey(),
		authority: solana.NewWallet().PublicKey(),
	}
	f.permissionless = NewPermissionlessUseCase(programID, repo, repo, tokens, guards, registry, logger)
	f.processor = NewProcessor(programID, f.configs, f.freezes, f.permissionless, logger)

	require.NoError(t, system.Credit(ctx, f.payer, fixtureBalance))
	require.NoError(t, system.Credit(ctx, f.authority, fixtureBalance))
	return f
}

func frozenState() *tokenDomain.AccountState {
	state := tokenDomain.AccountStateFrozen
	return &state
}

// createMint creates an initialized mint whose freeze authority is the fixture authority.
func (f *engineFixture) createMint(
	t *testing.T,
	closeAuthority *solana.PublicKey,
	defaultState *tokenDomain.AccountState,
) solana.PublicKey {
	t.Helper()
	freezeAuthority := f.authority
	return f.createMintWithFreezeAuthority(t, &freezeAuthority, closeAuthority, defaultState)
}

func (f *engineFixture) createMintWithFreezeAuthority(
	t *testing.T,
	freezeAuthority, closeAuthority *solana.PublicKey,
	defaultState *tokenDomain.AccountState,
) solana.PublicKey {
	t.Helper()
	mint := solana.NewWallet().PublicKey()
	layout := &tokenDomain.Mint{CloseAuthority: closeAuthority, DefaultAccountState: defaultState}

	signers := ledgerDomain.NewSignerSet(f.payer, mint)
	require.NoError(t, f.system.CreateAccount(f.ctx, f.payer, mint, layout.Size(), tokenDomain.ProgramID, signers))
	if closeAuthority != nil {
		require.NoError(t, f.tokens.InitializeMintCloseAuthority(f.ctx, mint, closeAuthority))
	}
	if defaultState != nil {
		require.NoError(t, f.tokens.InitializeDefaultAccountState(f.ctx, mint, *defaultState))
	}
	require.NoError(t, f.tokens.InitializeMint(f.ctx, mint, 6, f.payer, freezeAuthority))
	return mint
}

func (f *engineFixture) createHolder(t *testing.T, mint solana.PublicKey) (owner, tokenAccount solana.PublicKey) {
	t.Helper()
	owner = solana.NewWallet().PublicKey()
	tokenAccount, err := f.tokens.CreateAssociatedAccount(f.ctx, f.payer, owner, mint, false, ledgerDomain.NewSignerSet(f.payer))
	require.NoError(t, err)
	return owner, tokenAccount
}

func configAddress(t *testing.T, mint solana.PublicKey) solana.PublicKey {
	t.Helper()
	address, _, err := aclDomain.FindMintConfigAddress(programID, mint)
	require.NoError(t, err)
	return address
}

func guardAddress(t *testing.T, tokenAccount solana.PublicKey) solana.PublicKey {
	t.Helper()
	address, _, err := aclDomain.FindGuardAddress(programID, tokenAccount)
	require.NoError(t, err)
	return address
}

func (f *engineFixture) createConfigInput(t *testing.T, mint, gate solana.PublicKey) CreateConfigInput {
	t.Helper()
	return CreateConfigInput{
		Payer:         f.payer,
		Authority:     f.authority,
		Mint:          mint,
		MintConfig:    configAddress(t, mint),
		SystemProgram: solana.SystemProgramID,
		TokenProgram:  tokenDomain.ProgramID,
		GatingProgram: gate,
		Signers:       ledgerDomain.NewSignerSet(f.payer, f.authority),
	}
}

// createConfig creates a default-frozen mint under engine custody gated by gate.
func (f *engineFixture) createConfig(t *testing.T, gate solana.PublicKey) (mint, config solana.PublicKey) {
	t.Helper()
	mint = f.createMint(t, nil, frozenState())
	_, err := f.configs.Create(f.ctx, f.createConfigInput(t, mint, gate))
	require.NoError(t, err)
	return mint, configAddress(t, mint)
}

func (f *engineFixture) updateInput(config solana.PublicKey) UpdateConfigInput {
	return UpdateConfigInput{
		Authority:  f.authority,
		MintConfig: config,
		Signers:    ledgerDomain.NewSignerSet(f.authority),
	}
}

func (f *engineFixture) toggle(t *testing.T, config solana.PublicKey, freeze, thaw bool) {
	t.Helper()
	_, err := f.configs.TogglePermissionlessInstructions(f.ctx, f.updateInput(config), freeze, thaw)
	require.NoError(t, err)
}

func (f *engineFixture) tokenAccountState(t *testing.T, tokenAccount solana.PublicKey) tokenDomain.AccountState {
	t.Helper()
	account, err := f.tokens.GetAccount(f.ctx, tokenAccount)
	require.NoError(t, err)
	return account.State
}

func (f *engineFixture) lamports(t *testing.T, address solana.PublicKey) uint64 {
	t.Helper()
	account, err := f.repo.Get(f.ctx, address)
	require.NoError(t, err)
	return account.Lamports
}
