package usecase

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	"github.com/allisson/tokenacl/internal/database"
	apperrors "github.com/allisson/tokenacl/internal/errors"
	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	resolutionDomain "github.com/allisson/tokenacl/internal/resolution/domain"
	resolutionService "github.com/allisson/tokenacl/internal/resolution/service"
)

// permissionlessUseCase implements PermissionlessUseCase.
type permissionlessUseCase struct {
	txManager database.TxManager
	store     *configStore
	tokens    TokenProgram
	guards    GuardManager
	gates     GateRegistry
	resolver  *resolutionService.Resolver
	logger    *slog.Logger
}

// NewPermissionlessUseCase creates a PermissionlessUseCase for the engine deployed at
// programID.
func NewPermissionlessUseCase(
	programID solana.PublicKey,
	txManager database.TxManager,
	accounts AccountRepository,
	tokens TokenProgram,
	guards GuardManager,
	gates GateRegistry,
	logger *slog.Logger,
) PermissionlessUseCase {
	return &permissionlessUseCase{
		txManager: txManager,
		store:     &configStore{programID: programID, accounts: accounts},
		tokens:    tokens,
		guards:    guards,
		gates:     gates,
		resolver:  resolutionService.NewResolver(NewAccountDataFetcher(accounts)),
		logger:    logger,
	}
}

// NewAccountDataFetcher reads descriptor inputs straight from ledger storage.
func NewAccountDataFetcher(accounts AccountRepository) resolutionService.AccountDataFetcher {
	return resolutionService.AccountDataFetcherFunc(
		func(ctx context.Context, address solana.PublicKey) ([]byte, bool, error) {
			account, err := accounts.Get(ctx, address)
			if err != nil {
				if apperrors.Is(err, ledgerDomain.ErrAccountNotFound) {
					return nil, false, nil
				}
				return nil, false, err
			}
			return account.Data, true, nil
		},
	)
}

// FreezePermissionless implements PermissionlessUseCase.
func (p *permissionlessUseCase) FreezePermissionless(ctx context.Context, in PermissionlessInput) error {
	return p.run(ctx, gateDomain.OperationFreeze, in)
}

// ThawPermissionless implements PermissionlessUseCase.
func (p *permissionlessUseCase) ThawPermissionless(ctx context.Context, in PermissionlessInput) error {
	return p.run(ctx, gateDomain.OperationThaw, in)
}

func (p *permissionlessUseCase) run(ctx context.Context, op gateDomain.Operation, in PermissionlessInput) error {
	freeze := op == gateDomain.OperationFreeze
	skipped := false

	err := p.txManager.WithTx(ctx, func(ctx context.Context) error {
		config, err := p.validate(ctx, in, freeze)
		if err != nil {
			return err
		}

		tokenAccount, err := p.tokens.GetAccount(ctx, in.TokenAccount)
		if err != nil {
			return err
		}
		if !tokenAccount.Owner.Equals(in.TokenAccountOwner) {
			return aclDomain.ErrInvalidTokenAccountOwner
		}
		if in.Idempotent && tokenAccount.IsFrozen() == freeze {
			if !tokenAccount.Mint.Equals(in.Mint) {
				return aclDomain.ErrInvalidTokenMint
			}
			skipped = true
			return nil
		}

		if err := p.guards.Set(ctx, in.Authority, in.TokenAccount, in.Guard, in.Signers); err != nil {
			return err
		}
		if err := p.decide(ctx, op, in); err != nil {
			return err
		}

		signer, err := aclDomain.NewConfigSigner(p.store.programID, in.MintConfig, config)
		if err != nil {
			return err
		}
		signers := signer.Authorize(in.Signers)
		if freeze {
			err = p.tokens.FreezeAccount(ctx, in.TokenAccount, in.Mint, in.MintConfig, signers)
		} else {
			err = p.tokens.ThawAccount(ctx, in.TokenAccount, in.Mint, in.MintConfig, signers)
		}
		if err != nil {
			return err
		}

		return p.guards.Clear(ctx, in.Guard, in.Authority)
	})
	if err != nil {
		return err
	}

	p.logger.Info("permissionless operation completed",
		slog.String("operation", string(op)),
		slog.String("token_account", in.TokenAccount.String()),
		slog.String("gating_program", in.GatingProgram.String()),
		slog.Bool("skipped", skipped),
	)
	return nil
}

// validate runs every check that precedes the first mutation.
func (p *permissionlessUseCase) validate(
	ctx context.Context,
	in PermissionlessInput,
	freeze bool,
) (*aclDomain.MintConfig, error) {
	if !in.Signers.Has(in.Authority) {
		return nil, aclDomain.ErrInvalidAuthority
	}
	if !in.TokenProgram.Equals(p.tokens.ProgramID()) {
		return nil, aclDomain.ErrInvalidTokenProgram
	}
	if !in.SystemProgram.Equals(solana.SystemProgramID) {
		return nil, aclDomain.ErrInvalidSystemProgram
	}

	_, config, err := p.store.load(ctx, in.MintConfig)
	if err != nil {
		return nil, err
	}
	if !config.Mint.Equals(in.Mint) {
		return nil, aclDomain.ErrInvalidTokenMint
	}
	if !config.PermissionlessEnabled(freeze) {
		if freeze {
			return nil, aclDomain.ErrPermissionlessFreezeNotEnabled
		}
		return nil, aclDomain.ErrPermissionlessThawNotEnabled
	}
	if !config.HasGatingProgram() || !config.GatingProgram.Equals(in.GatingProgram) {
		return nil, aclDomain.ErrInvalidGatingProgram
	}
	return config, nil
}

// decide builds the decision call and invokes the gating program. A rejection is
// returned unchanged.
func (p *permissionlessUseCase) decide(ctx context.Context, op gateDomain.Operation, in PermissionlessInput) error {
	program, err := p.gates.Get(in.GatingProgram)
	if err != nil {
		return err
	}

	ix := gateDomain.NewDecisionInstruction(
		op, in.GatingProgram, in.Authority, in.TokenAccount, in.Mint, in.TokenAccountOwner, in.Guard,
	)
	metas, err := p.resolveExtras(ctx, op, in, ix)
	if err != nil {
		return err
	}

	views := make([]gateDomain.AccountView, 0, len(metas))
	for _, meta := range metas {
		view := gateDomain.AccountView{AccountMeta: meta}
		account, err := p.store.accounts.Get(ctx, meta.PublicKey)
		switch {
		case err == nil:
			view.Exists = true
			view.Owner = account.Owner
			view.Data = account.Data
		case !apperrors.Is(err, ledgerDomain.ErrAccountNotFound):
			return err
		}
		views = append(views, view)
	}

	return program.Decide(ctx, &gateDomain.DecisionRequest{
		Operation: op,
		ProgramID: in.GatingProgram,
		Accounts:  views,
		Data:      ix.Data,
	})
}

// resolveExtras returns the full account list of the decision call. The descriptor list
// account is optional: when the caller did not supply it the gating program gets the
// fixed accounts only.
func (p *permissionlessUseCase) resolveExtras(
	ctx context.Context,
	op gateDomain.Operation,
	in PermissionlessInput,
	ix ledgerDomain.Instruction,
) ([]ledgerDomain.AccountMeta, error) {
	metasAddress, _, err := gateDomain.FindExtraMetasAddress(op, in.Mint, in.GatingProgram)
	if err != nil {
		return ix.Accounts, nil
	}
	supplied := false
	for _, meta := range in.Remaining {
		if meta.PublicKey.Equals(metasAddress) {
			supplied = true
			break
		}
	}
	if !supplied {
		return ix.Accounts, nil
	}

	accounts := append(ix.Accounts, ledgerDomain.NewAccountMeta(metasAddress, false, false))
	listAccount, err := p.store.accounts.Get(ctx, metasAddress)
	if err != nil {
		if apperrors.Is(err, ledgerDomain.ErrAccountNotFound) {
			return nil, resolutionDomain.ErrAccountDataNotFound
		}
		return nil, err
	}
	list, err := resolutionDomain.UnmarshalList(listAccount.Data, op.Discriminator())
	if err != nil {
		return nil, err
	}

	extras, err := p.resolver.Resolve(ctx, list.Metas, accounts, ix.Data, in.GatingProgram)
	if err != nil {
		return nil, err
	}
	available := append(append([]ledgerDomain.AccountMeta(nil), accounts...), in.Remaining...)
	if _, err := resolutionService.RequireAccounts(extras, available); err != nil {
		return nil, err
	}
	return append(accounts, extras...), nil
}
