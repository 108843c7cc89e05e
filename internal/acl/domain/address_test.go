package domain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

func TestNewConfigSigner(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	address, bump, err := FindMintConfigAddress(DefaultProgramID, mint)
	require.NoError(t, err)

	t.Run("verified pair", func(t *testing.T) {
		signer, err := NewConfigSigner(DefaultProgramID, address, &MintConfig{Mint: mint, Bump: bump})
		require.NoError(t, err)
		assert.Equal(t, address, signer.Address())

		signers := signer.Authorize(ledgerDomain.NewSignerSet())
		assert.True(t, signers.Has(address))
	})

	t.Run("other mint", func(t *testing.T) {
		_, err := NewConfigSigner(DefaultProgramID, address, &MintConfig{Mint: solana.NewWallet().PublicKey(), Bump: bump})
		assert.ErrorIs(t, err, ledgerDomain.ErrInvalidSeeds)
	})

	t.Run("other program", func(t *testing.T) {
		_, err := NewConfigSigner(solana.NewWallet().PublicKey(), address, &MintConfig{Mint: mint, Bump: bump})
		assert.ErrorIs(t, err, ledgerDomain.ErrInvalidSeeds)
	})
}

func TestNewGuardSigner(t *testing.T) {
	tokenAccount := solana.NewWallet().PublicKey()
	expected, _, err := FindGuardAddress(DefaultProgramID, tokenAccount)
	require.NoError(t, err)

	signer, err := NewGuardSigner(DefaultProgramID, tokenAccount)
	require.NoError(t, err)
	assert.Equal(t, expected, signer.Address())

	other, err := NewGuardSigner(DefaultProgramID, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, expected, other.Address())
}

func TestAuthorizeDoesNotMutateInput(t *testing.T) {
	signer, err := NewGuardSigner(DefaultProgramID, solana.NewWallet().PublicKey())
	require.NoError(t, err)

	base := ledgerDomain.NewSignerSet()
	extended := signer.Authorize(base)
	assert.True(t, extended.Has(signer.Address()))
	assert.False(t, base.Has(signer.Address()))
}
