package usecase

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/allisson/tokenacl/internal/database"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// accountUseCase implements AccountUseCase.
type accountUseCase struct {
	txManager database.TxManager
	accounts  AccountRepository
	funder    Funder
	logger    *slog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager database.TxManager,
	accounts AccountRepository,
	funder Funder,
	logger *slog.Logger,
) AccountUseCase {
	return &accountUseCase{
		txManager: txManager,
		accounts:  accounts,
		funder:    funder,
		logger:    logger,
	}
}

// Get implements AccountUseCase.
func (a *accountUseCase) Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error) {
	return a.accounts.Get(ctx, address)
}

// Fund implements AccountUseCase.
func (a *accountUseCase) Fund(
	ctx context.Context,
	address solana.PublicKey,
	lamports uint64,
) (*ledgerDomain.Account, error) {
	var account *ledgerDomain.Account
	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.funder.Credit(ctx, address, lamports); err != nil {
			return err
		}
		var err error
		account, err = a.accounts.Get(ctx, address)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("account funded",
		slog.String("address", address.String()),
		slog.Uint64("lamports", lamports),
	)
	return account, nil
}
