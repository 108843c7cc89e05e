package usecase

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	"github.com/allisson/tokenacl/internal/database"
)

// freezeUseCase implements FreezeUseCase.
type freezeUseCase struct {
	txManager database.TxManager
	store     *configStore
	tokens    TokenProgram
	logger    *slog.Logger
}

// NewFreezeUseCase creates a FreezeUseCase for the engine deployed at programID.
func NewFreezeUseCase(
	programID solana.PublicKey,
	txManager database.TxManager,
	accounts AccountRepository,
	tokens TokenProgram,
	logger *slog.Logger,
) FreezeUseCase {
	return &freezeUseCase{
		txManager: txManager,
		store:     &configStore{programID: programID, accounts: accounts},
		tokens:    tokens,
		logger:    logger,
	}
}

// Freeze implements FreezeUseCase.
func (f *freezeUseCase) Freeze(ctx context.Context, in FreezeInput) error {
	return f.apply(ctx, in, true)
}

// Thaw implements FreezeUseCase.
func (f *freezeUseCase) Thaw(ctx context.Context, in FreezeInput) error {
	return f.apply(ctx, in, false)
}

func (f *freezeUseCase) apply(ctx context.Context, in FreezeInput, freeze bool) error {
	err := f.txManager.WithTx(ctx, func(ctx context.Context) error {
		if !in.Signers.Has(in.Authority) {
			return aclDomain.ErrInvalidAuthority
		}
		if !in.TokenProgram.Equals(f.tokens.ProgramID()) {
			return aclDomain.ErrInvalidTokenProgram
		}
		_, config, err := f.store.authorize(ctx, in.Authority, in.MintConfig, in.Signers)
		if err != nil {
			return err
		}
		if !config.Mint.Equals(in.Mint) {
			return aclDomain.ErrInvalidTokenMint
		}

		signer, err := aclDomain.NewConfigSigner(f.store.programID, in.MintConfig, config)
		if err != nil {
			return err
		}
		signers := signer.Authorize(in.Signers)
		if freeze {
			return f.tokens.FreezeAccount(ctx, in.TokenAccount, in.Mint, in.MintConfig, signers)
		}
		return f.tokens.ThawAccount(ctx, in.TokenAccount, in.Mint, in.MintConfig, signers)
	})
	if err != nil {
		return err
	}

	f.logger.Info("token account state changed",
		slog.String("token_account", in.TokenAccount.String()),
		slog.String("mint", in.Mint.String()),
		slog.Bool("frozen", freeze),
	)
	return nil
}
