package service

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// AccountRepository is the ledger storage the guard manager writes the sentinel to.
type AccountRepository interface {
	Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error)
	Update(ctx context.Context, account *ledgerDomain.Account) error
}

// SystemProgram allocates and releases guard records.
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

// GuardManager creates and tears down guard records. A guard can only be created when
// none exists for the token account, which makes it a create-or-fail lock.
type GuardManager struct {
	programID solana.PublicKey
	accounts  AccountRepository
	system    SystemProgram
	locker    Locker
	logger    *slog.Logger
}

// NewGuardManager creates a new GuardManager.
func NewGuardManager(
	programID solana.PublicKey,
	accounts AccountRepository,
	system SystemProgram,
	locker Locker,
	logger *slog.Logger,
) *GuardManager {
	return &GuardManager{
		programID: programID,
		accounts:  accounts,
		system:    system,
		locker:    locker,
		logger:    logger,
	}
}

// Set creates the guard of tokenAccount at guard, funded by payer, and raises the
// sentinel. guard must be the derived guard address.
func (g *GuardManager) Set(
	ctx context.Context,
	payer, tokenAccount, guard solana.PublicKey,
	signers ledgerDomain.SignerSet,
) error {
	signer, err := aclDomain.NewGuardSigner(g.programID, tokenAccount)
	if err != nil {
		return err
	}
	if !signer.Address().Equals(guard) {
		return ledgerDomain.ErrInvalidSeeds
	}

	if err := g.locker.Acquire(ctx, guard); err != nil {
		return err
	}
	if err := g.system.CreateAccount(ctx, payer, guard, aclDomain.GuardSize, g.programID, signer.Authorize(signers)); err != nil {
		return err
	}

	account, err := g.accounts.Get(ctx, guard)
	if err != nil {
		return err
	}
	account.Data = []byte{aclDomain.GuardActive}
	if err := g.accounts.Update(ctx, account); err != nil {
		return err
	}

	g.logger.Debug("guard set",
		slog.String("token_account", tokenAccount.String()),
		slog.String("guard", guard.String()),
	)
	return nil
}

// Clear lowers the sentinel, destroys the guard and refunds its deposit to receiver.
func (g *GuardManager) Clear(ctx context.Context, guard, receiver solana.PublicKey) error {
	account, err := g.accounts.Get(ctx, guard)
	if err != nil {
		return err
	}
	if !account.Owner.Equals(g.programID) {
		return ledgerDomain.ErrInvalidAccountOwner
	}
	account.Data = make([]byte, len(account.Data))
	if err := g.accounts.Update(ctx, account); err != nil {
		return err
	}
	if err := g.system.Close(ctx, guard, receiver); err != nil {
		return err
	}

	g.logger.Debug("guard cleared", slog.String("guard", guard.String()))
	return nil
}
