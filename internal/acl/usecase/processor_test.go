package usecase

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	gateDomain "github.com/allisson/tokenacl/internal/gate/domain"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	tokenDomain "github.com/allisson/tokenacl/internal/token/domain"
)

func metas(keys ...solana.PublicKey) []ledgerDomain.AccountMeta {
	out := make([]ledgerDomain.AccountMeta, len(keys))
	for i, key := range keys {
		out[i] = ledgerDomain.NewAccountMeta(key, false, false)
	}
	return out
}

func (f *engineFixture) process(data *aclDomain.InstructionData, signers ledgerDomain.SignerSet, keys ...solana.PublicKey) error {
	return f.processor.Process(f.ctx, &ledgerDomain.InstructionContext{
		ProgramID: programID,
		Accounts:  metas(keys...),
		Data:      data.Marshal(),
		Signers:   signers,
	})
}

func TestProcessor_Lifecycle(t *testing.T) {
	f := newEngineFixture(t)
	assert.Equal(t, programID, f.processor.ProgramID())

	mint := f.createMint(t, nil, frozenState())
	config := configAddress(t, mint)
	owner, holder := f.createHolder(t, mint)
	signers := ledgerDomain.NewSignerSet(f.payer, f.authority)

	err := f.process(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeCreateConfig, Key: gateDomain.AlwaysAllowProgramID},
		signers, f.payer, f.authority, mint, config, solana.SystemProgramID, tokenDomain.ProgramID,
	)
	require.NoError(t, err)

	err = f.process(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeTogglePermissionlessInstructions, EnableThaw: true},
		signers, f.authority, config,
	)
	require.NoError(t, err)

	err = f.process(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeThawPermissionless, Idempotent: true},
		signers, f.payer, mint, holder, guardAddress(t, holder), owner, config,
		tokenDomain.ProgramID, solana.SystemProgramID, gateDomain.AlwaysAllowProgramID,
	)
	require.NoError(t, err)
	assert.Equal(t, tokenDomain.AccountStateInitialized, f.tokenAccountState(t, holder))

	err = f.process(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeFreeze},
		signers, f.authority, mint, holder, config, tokenDomain.ProgramID,
	)
	require.NoError(t, err)
	assert.Equal(t, tokenDomain.AccountStateFrozen, f.tokenAccountState(t, holder))

	err = f.process(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeFreezePermissionless},
		signers, f.payer, mint, holder, guardAddress(t, holder), owner, config,
		tokenDomain.ProgramID, solana.SystemProgramID, gateDomain.AlwaysAllowProgramID,
	)
	assert.ErrorIs(t, err, aclDomain.ErrPermissionlessFreezeNotEnabled)

	newAuthority := solana.NewWallet().PublicKey()
	err = f.process(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeSetGatingProgram, Key: gateDomain.AlwaysBlockProgramID},
		signers, f.authority, config,
	)
	require.NoError(t, err)
	err = f.process(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeSetAuthority, Key: newAuthority},
		signers, f.authority, config,
	)
	require.NoError(t, err)

	stored, err := f.configs.Get(f.ctx, mint)
	require.NoError(t, err)
	assert.Equal(t, newAuthority, stored.Authority)
	assert.Equal(t, gateDomain.AlwaysBlockProgramID, stored.GatingProgram)

	receiver := solana.NewWallet().PublicKey()
	err = f.process(
		&aclDomain.InstructionData{Opcode: aclDomain.OpcodeDeleteConfig, Key: f.authority},
		signers.With(newAuthority), newAuthority, receiver, mint, config, tokenDomain.ProgramID,
	)
	require.NoError(t, err)

	minted, err := f.tokens.GetMint(f.ctx, mint)
	require.NoError(t, err)
	assert.Equal(t, f.authority, *minted.FreezeAuthority)
}

func TestProcessor_Decoding(t *testing.T) {
	f := newEngineFixture(t)
	key := solana.NewWallet().PublicKey()
	signers := ledgerDomain.NewSignerSet(key)

	tests := []struct {
		name    string
		data    []byte
		keys    int
		wantErr error
	}{
		{"empty data", nil, 0, ledgerDomain.ErrInvalidInstructionData},
		{"unknown opcode", []byte{9}, 2, ledgerDomain.ErrInvalidInstructionData},
		{"create config with too few accounts", append([]byte{0}, key[:]...), 5, ledgerDomain.ErrInvalidInstructionData},
		{"create config with too many accounts", append([]byte{0}, key[:]...), 7, ledgerDomain.ErrInvalidInstructionData},
		{"delete config with too few accounts", append([]byte{3}, key[:]...), 4, ledgerDomain.ErrInvalidInstructionData},
		{"set authority without config", append([]byte{1}, key[:]...), 1, ledgerDomain.ErrNotEnoughAccountKeys},
		{"freeze with too few accounts", []byte{5}, 4, ledgerDomain.ErrNotEnoughAccountKeys},
		{"thaw permissionless with too few accounts", []byte{6, 0}, 8, ledgerDomain.ErrNotEnoughAccountKeys},
		{"truncated payload", []byte{1, 1, 2}, 2, ledgerDomain.ErrInvalidInstructionData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := make([]solana.PublicKey, tt.keys)
			for i := range keys {
				keys[i] = key
			}
			err := f.processor.Process(f.ctx, &ledgerDomain.InstructionContext{
				ProgramID: programID,
				Accounts:  metas(keys...),
				Data:      tt.data,
				Signers:   signers,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
