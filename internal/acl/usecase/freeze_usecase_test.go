package usecase

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
)

func TestFreezeUseCase_ThawAndFreeze(t *testing.T) {
	f := newEngineFixture(t)
	mint, config := f.createConfig(t, solana.PublicKey{})
	_, holder := f.createHolder(t, mint)
	require.Equal(t, tokenDomain.AccountStateFrozen, f.tokenAccountState(t, holder))

	in := FreezeInput{
		Authority:    f.authority,
		Mint:         mint,
		TokenAccount: holder,
		MintConfig:   config,
		TokenProgram: tokenDomain.ProgramID,
		Signers:      ledgerDomain.NewSignerSet(f.authority),
	}

	require.NoError(t, f.freezes.Thaw(f.ctx, in))
	assert.Equal(t, tokenDomain.AccountStateInitialized, f.tokenAccountState(t, holder))

	t.Run("thawing twice hits the token program state check", func(t *testing.T) {
		assert.ErrorIs(t, f.freezes.Thaw(f.ctx, in), tokenDomain.ErrInvalidState)
	})

	require.NoError(t, f.freezes.Freeze(f.ctx, in))
	assert.Equal(t, tokenDomain.AccountStateFrozen, f.tokenAccountState(t, holder))

	_, err := f.repo.Get(f.ctx, guardAddress(t, holder))
	assert.ErrorIs(t, err, ledgerDomain.ErrAccountNotFound)
}

func TestFreezeUseCase_Validation(t *testing.T) {
	f := newEngineFixture(t)
	mint, config := f.createConfig(t, solana.PublicKey{})
	otherMint, _ := f.createConfig(t, solana.PublicKey{})
	_, holder := f.createHolder(t, mint)
	stranger := solana.NewWallet().PublicKey()

	valid := func() FreezeInput {
		return FreezeInput{
			Authority:    f.authority,
			Mint:         mint,
			TokenAccount: holder,
			MintConfig:   config,
			TokenProgram: tokenDomain.ProgramID,
			Signers:      ledgerDomain.NewSignerSet(f.authority),
		}
	}

	tests := []struct {
		name    string
		mutate  func(in *FreezeInput)
		wantErr error
	}{
		{"authority did not sign", func(in *FreezeInput) { in.Signers = ledgerDomain.NewSignerSet() }, aclDomain.ErrInvalidAuthority},
		{"wrong token program", func(in *FreezeInput) { in.TokenProgram = stranger }, aclDomain.ErrInvalidTokenProgram},
		{"unknown config", func(in *FreezeInput) { in.MintConfig = stranger }, aclDomain.ErrInvalidMintConfig},
		{"mint mismatch", func(in *FreezeInput) { in.Mint = otherMint }, aclDomain.ErrInvalidTokenMint},
		{
			"authority mismatch",
			func(in *FreezeInput) {
				in.Authority = stranger
				in.Signers = ledgerDomain.NewSignerSet(stranger)
			},
			aclDomain.ErrInvalidAuthority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			assert.ErrorIs(t, f.freezes.Thaw(f.ctx, in), tt.wantErr)
			assert.Equal(t, tokenDomain.AccountStateFrozen, f.tokenAccountState(t, holder))
		})
	}
}
