package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	"github.com/allisson/tokenacl/internal/ledger/repository"
	ledgerService "github.com/allisson/tokenacl/internal/ledger/service"
)

type guardFixture struct {
	repo    *repository.MemoryAccountRepository
	locker  *KeyedLocker
	manager *GuardManager
	payer   solana.PublicKey
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	repo := repository.NewMemoryAccountRepository()
	system := ledgerService.NewSystemService(repo, slog.Default())
	locker := NewKeyedLocker()
	payer := solana.NewWallet().PublicKey()
	require.NoError(t, system.Credit(context.Background(), payer, 10_000_000))
	return &guardFixture{
		repo:    repo,
		locker:  locker,
		manager: NewGuardManager(aclDomain.DefaultProgramID, repo, system, locker, slog.Default()),
		payer:   payer,
	}
}

func guardAddress(t *testing.T, tokenAccount solana.PublicKey) solana.PublicKey {
	t.Helper()
	guard, _, err := aclDomain.FindGuardAddress(aclDomain.DefaultProgramID, tokenAccount)
	require.NoError(t, err)
	return guard
}

func TestGuardManager_SetAndClear(t *testing.T) {
	ctx := context.Background()
	f := newGuardFixture(t)
	tokenAccount := solana.NewWallet().PublicKey()
	guard := guardAddress(t, tokenAccount)
	signers := ledgerDomain.NewSignerSet(f.payer)

	err := f.repo.WithTx(ctx, func(ctx context.Context) error {
		require.NoError(t, f.manager.Set(ctx, f.payer, tokenAccount, guard, signers))

		account, err := f.repo.Get(ctx, guard)
		require.NoError(t, err)
		assert.Equal(t, aclDomain.DefaultProgramID, account.Owner)
		assert.Equal(t, []byte{aclDomain.GuardActive}, account.Data)
		assert.Equal(t, ledgerDomain.MinimumBalance(aclDomain.GuardSize), account.Lamports)

		return f.manager.Clear(ctx, guard, f.payer)
	})
	require.NoError(t, err)

	_, err = f.repo.Get(ctx, guard)
	assert.ErrorIs(t, err, ledgerDomain.ErrAccountNotFound)
	payer, err := f.repo.Get(ctx, f.payer)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), payer.Lamports)
	assert.False(t, f.locker.Held(guard))
}

func TestGuardManager_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong guard address", func(t *testing.T) {
		f := newGuardFixture(t)
		err := f.repo.WithTx(ctx, func(ctx context.Context) error {
			return f.manager.Set(ctx, f.payer, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(),
				ledgerDomain.NewSignerSet(f.payer))
		})
		assert.ErrorIs(t, err, ledgerDomain.ErrInvalidSeeds)
	})

	t.Run("existing guard", func(t *testing.T) {
		f := newGuardFixture(t)
		tokenAccount := solana.NewWallet().PublicKey()
		guard := guardAddress(t, tokenAccount)
		signers := ledgerDomain.NewSignerSet(f.payer)

		require.NoError(t, f.repo.WithTx(ctx, func(ctx context.Context) error {
			return f.manager.Set(ctx, f.payer, tokenAccount, guard, signers)
		}))
		err := f.repo.WithTx(ctx, func(ctx context.Context) error {
			return f.manager.Set(ctx, f.payer, tokenAccount, guard, signers)
		})
		assert.ErrorIs(t, err, ledgerDomain.ErrAccountAlreadyInUse)
	})

	t.Run("concurrent holder", func(t *testing.T) {
		f := newGuardFixture(t)
		tokenAccount := solana.NewWallet().PublicKey()
		guard := guardAddress(t, tokenAccount)
		signers := ledgerDomain.NewSignerSet(f.payer)

		err := f.repo.WithTx(ctx, func(outer context.Context) error {
			require.NoError(t, f.manager.Set(outer, f.payer, tokenAccount, guard, signers))
			return f.repo.WithTx(context.Background(), func(inner context.Context) error {
				return f.manager.Set(inner, f.payer, tokenAccount, guard, signers)
			})
		})
		assert.ErrorIs(t, err, aclDomain.ErrGuardHeld)
		assert.ErrorIs(t, err, ledgerDomain.ErrAccountAlreadyInUse)

		_, err = f.repo.Get(ctx, guard)
		assert.ErrorIs(t, err, ledgerDomain.ErrAccountNotFound)
	})

	t.Run("payer without funds", func(t *testing.T) {
		f := newGuardFixture(t)
		broke := solana.NewWallet().PublicKey()
		tokenAccount := solana.NewWallet().PublicKey()
		err := f.repo.WithTx(ctx, func(ctx context.Context) error {
			return f.manager.Set(ctx, broke, tokenAccount, guardAddress(t, tokenAccount), ledgerDomain.NewSignerSet(broke))
		})
		assert.ErrorIs(t, err, ledgerDomain.ErrInsufficientFunds)
	})
}

func TestGuardManager_ClearForeignAccount(t *testing.T) {
	ctx := context.Background()
	f := newGuardFixture(t)
	err := f.repo.WithTx(ctx, func(ctx context.Context) error {
		return f.manager.Clear(ctx, f.payer, f.payer)
	})
	assert.ErrorIs(t, err, ledgerDomain.ErrInvalidAccountOwner)
}
