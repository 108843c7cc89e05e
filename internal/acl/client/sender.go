package client

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	ledgerUseCase "github.com/allisson/tokenacl/internal/ledger/usecase"
)

// Sender signs instructions into transactions and submits them to the ledger.
type Sender struct {
	transactions ledgerUseCase.TransactionUseCase
	nonce        func() uint64
}

// NewSender creates a Sender submitting through transactions.
func NewSender(transactions ledgerUseCase.TransactionUseCase) *Sender {
	return &Sender{
		transactions: transactions,
		nonce:        func() uint64 { return uint64(time.Now().UnixNano()) },
	}
}

// Send submits instructions as one transaction paid by feePayer and signed by every key
// in signers. The fee payer always signs first, so its signature identifies the
// transaction.
func (s *Sender) Send(
	ctx context.Context,
	feePayer solana.PrivateKey,
	instructions []ledgerDomain.Instruction,
	signers ...solana.PrivateKey,
) (*ledgerDomain.TransactionRecord, error) {
	tx := &ledgerDomain.Transaction{
		FeePayer:     feePayer.PublicKey(),
		Nonce:        s.nonce(),
		Instructions: instructions,
	}

	keys := []solana.PrivateKey{feePayer}
	for _, signer := range signers {
		if !signer.PublicKey().Equals(tx.FeePayer) {
			keys = append(keys, signer)
		}
	}
	if err := tx.Sign(keys...); err != nil {
		return nil, err
	}
	return s.transactions.Submit(ctx, tx)
}
