package usecase

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// AccountRepository defines the interface for account persistence.
type AccountRepository interface {
	Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error)
	Create(ctx context.Context, account *ledgerDomain.Account) error
	Update(ctx context.Context, account *ledgerDomain.Account) error
	Delete(ctx context.Context, address solana.PublicKey) error
}

// TransactionRecordRepository defines the interface for submission audit records.
type TransactionRecordRepository interface {
	Create(ctx context.Context, record *ledgerDomain.TransactionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*ledgerDomain.TransactionRecord, error)
	GetBySignature(ctx context.Context, signature string) (*ledgerDomain.TransactionRecord, error)
	List(ctx context.Context, offset, limit int) ([]*ledgerDomain.TransactionRecord, error)
}

// Program is an executable unit the runtime dispatches instructions to.
type Program interface {
	ProgramID() solana.PublicKey
	Process(ctx context.Context, ix *ledgerDomain.InstructionContext) error
}

// Funder credits deposits to addresses without a source account.
type Funder interface {
	Credit(ctx context.Context, to solana.PublicKey, lamports uint64) error
}

// TransactionUseCase verifies and executes transactions atomically.
type TransactionUseCase interface {
	// Submit executes every instruction in one atomic unit and records the outcome.
	// The record is returned for failed transactions too, alongside the error.
	Submit(ctx context.Context, tx *ledgerDomain.Transaction) (*ledgerDomain.TransactionRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*ledgerDomain.TransactionRecord, error)
	// List returns submission records newest first.
	List(ctx context.Context, offset, limit int) ([]*ledgerDomain.TransactionRecord, error)
}

// AccountUseCase exposes read access and development funding for ledger accounts.
type AccountUseCase interface {
	Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error)
	Fund(ctx context.Context, address solana.PublicKey, lamports uint64) (*ledgerDomain.Account, error)
}
