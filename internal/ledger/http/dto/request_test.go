package dto

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	ledgerService "github.com/allisson/tokenacl/internal/ledger/service"
)

func signedTransaction(t *testing.T) *ledgerDomain.Transaction {
	t.Helper()
	payer := solana.NewWallet()
	tx := &ledgerDomain.Transaction{
		FeePayer: payer.PublicKey(),
		Nonce:    7,
		Instructions: []ledgerDomain.Instruction{
			ledgerService.NewTransferInstruction(payer.PublicKey(), solana.NewWallet().PublicKey(), 100),
		},
	}
	require.NoError(t, tx.Sign(payer.PrivateKey))
	return tx
}

func TestSubmitTransactionRequest_Validate(t *testing.T) {
	t.Run("Success_RoundTrip", func(t *testing.T) {
		tx := signedTransaction(t)
		req := MapTransactionToRequest(tx)

		require.NoError(t, req.Validate())
		got, err := req.ToDomain()
		require.NoError(t, err)
		assert.Equal(t, tx.Message(), got.Message())

		signers, err := got.VerifiedSigners()
		require.NoError(t, err)
		assert.True(t, signers.Has(tx.FeePayer))
	})

	t.Run("Error_MissingInstructions", func(t *testing.T) {
		req := MapTransactionToRequest(signedTransaction(t))
		req.Instructions = nil

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "instructions")
	})

	t.Run("Error_InvalidFeePayer", func(t *testing.T) {
		req := MapTransactionToRequest(signedTransaction(t))
		req.FeePayer = "not-a-key"

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "fee_payer")
	})

	t.Run("Error_InvalidNestedAccount", func(t *testing.T) {
		req := MapTransactionToRequest(signedTransaction(t))
		req.Instructions[0].Accounts[1].PublicKey = "0OIl"

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "public key")
	})

	t.Run("Error_InvalidData", func(t *testing.T) {
		req := MapTransactionToRequest(signedTransaction(t))
		req.Instructions[0].Data = "not-valid-base64!@#"

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "base64")
	})

	t.Run("Error_InvalidSignature", func(t *testing.T) {
		req := MapTransactionToRequest(signedTransaction(t))
		req.Signatures[0].Signature = "short"

		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "signature")
	})
}
