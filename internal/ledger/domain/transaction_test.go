package domain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tokenacl/internal/errors"
)

func newTestTransaction(payer solana.PublicKey) *Transaction {
	return &Transaction{
		FeePayer: payer,
		Nonce:    7,
		Instructions: []Instruction{
			{
				ProgramID: solana.SystemProgramID,
				Accounts: []AccountMeta{
					NewAccountMeta(payer, true, true),
					NewAccountMeta(solana.NewWallet().PublicKey(), true, false),
				},
				Data: []byte{2, 0, 0, 0},
			},
		},
	}
}

func TestTransaction_SignAndVerify(t *testing.T) {
	wallet := solana.NewWallet()
	tx := newTestTransaction(wallet.PublicKey())

	require.NoError(t, tx.Sign(wallet.PrivateKey))
	require.Len(t, tx.Signatures, 1)

	signers, err := tx.VerifiedSigners()
	require.NoError(t, err)
	assert.True(t, signers.Has(wallet.PublicKey()))
	assert.Equal(t, tx.Signatures[0].Signature, tx.ID())
}

func TestTransaction_SignTwiceReplacesSignature(t *testing.T) {
	wallet := solana.NewWallet()
	tx := newTestTransaction(wallet.PublicKey())

	require.NoError(t, tx.Sign(wallet.PrivateKey))
	tx.Nonce = 8
	require.NoError(t, tx.Sign(wallet.PrivateKey))

	assert.Len(t, tx.Signatures, 1)
	_, err := tx.VerifiedSigners()
	assert.NoError(t, err)
}

func TestTransaction_TamperedMessage(t *testing.T) {
	wallet := solana.NewWallet()
	tx := newTestTransaction(wallet.PublicKey())
	require.NoError(t, tx.Sign(wallet.PrivateKey))

	tx.Instructions[0].Data[0] = 3

	_, err := tx.VerifiedSigners()
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTransaction_MessageIsDeterministic(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	tx := newTestTransaction(payer)

	assert.Equal(t, tx.Message(), tx.Message())

	flipped := *tx
	flipped.Instructions = []Instruction{tx.Instructions[0]}
	flipped.Instructions[0].Accounts = []AccountMeta{
		NewAccountMeta(payer, false, true),
		tx.Instructions[0].Accounts[1],
	}
	assert.NotEqual(t, tx.Message(), flipped.Message())
}

func TestTransaction_IDWithoutSignatures(t *testing.T) {
	tx := &Transaction{}
	assert.Equal(t, solana.Signature{}, tx.ID())
}

func TestSignerSet(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	set := NewSignerSet(a)
	extended := set.With(b)

	assert.True(t, extended.Has(a))
	assert.True(t, extended.Has(b))
	assert.False(t, set.Has(b))
}

func TestInstructionContext_Accounts(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	ixCtx := &InstructionContext{
		Accounts: []AccountMeta{NewAccountMeta(a, false, true), NewAccountMeta(b, true, false)},
		Signers:  NewSignerSet(a),
	}

	keys, err := ixCtx.Keys(2)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{a, b}, keys)

	_, err = ixCtx.Keys(3)
	assert.ErrorIs(t, err, ErrNotEnoughAccountKeys)

	_, err = ixCtx.Account(2)
	assert.ErrorIs(t, err, ErrNotEnoughAccountKeys)

	assert.Len(t, ixCtx.Remaining(1), 1)
	assert.Nil(t, ixCtx.Remaining(2))
	assert.True(t, ixCtx.IsSigner(a))
	assert.False(t, ixCtx.IsSigner(b))
}
