package usecase

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
	"github.com/allisson/tokenacl/internal/metrics"
)

// transactionUseCaseWithMetrics decorates TransactionUseCase with metrics instrumentation.
type transactionUseCaseWithMetrics struct {
	next    TransactionUseCase
	metrics metrics.BusinessMetrics
}

// NewTransactionUseCaseWithMetrics wraps a TransactionUseCase with metrics recording.
func NewTransactionUseCaseWithMetrics(useCase TransactionUseCase, m metrics.BusinessMetrics) TransactionUseCase {
	return &transactionUseCaseWithMetrics{next: useCase, metrics: m}
}

// Submit records metrics for transaction submissions.
func (t *transactionUseCaseWithMetrics) Submit(
	ctx context.Context,
	tx *ledgerDomain.Transaction,
) (*ledgerDomain.TransactionRecord, error) {
	start := time.Now()
	record, err := t.next.Submit(ctx, tx)

	status := metrics.StatusFromError(err)
	t.metrics.RecordOperation(ctx, "ledger", "transaction_submit", status)
	t.metrics.RecordDuration(ctx, "ledger", "transaction_submit", time.Since(start), status)

	return record, err
}

// Get records metrics for transaction record lookups.
func (t *transactionUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*ledgerDomain.TransactionRecord, error) {
	start := time.Now()
	record, err := t.next.Get(ctx, id)

	status := metrics.StatusFromError(err)
	t.metrics.RecordOperation(ctx, "ledger", "transaction_get", status)
	t.metrics.RecordDuration(ctx, "ledger", "transaction_get", time.Since(start), status)

	return record, err
}

// List records metrics for transaction record listings.
func (t *transactionUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*ledgerDomain.TransactionRecord, error) {
	start := time.Now()
	records, err := t.next.List(ctx, offset, limit)

	status := metrics.StatusFromError(err)
	t.metrics.RecordOperation(ctx, "ledger", "transaction_list", status)
	t.metrics.RecordDuration(ctx, "ledger", "transaction_list", time.Since(start), status)

	return records, err
}

// accountUseCaseWithMetrics decorates AccountUseCase with metrics instrumentation.
type accountUseCaseWithMetrics struct {
	next    AccountUseCase
	metrics metrics.BusinessMetrics
}

// NewAccountUseCaseWithMetrics wraps an AccountUseCase with metrics recording.
func NewAccountUseCaseWithMetrics(useCase AccountUseCase, m metrics.BusinessMetrics) AccountUseCase {
	return &accountUseCaseWithMetrics{next: useCase, metrics: m}
}

// Get records metrics for account lookups.
func (a *accountUseCaseWithMetrics) Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error) {
	start := time.Now()
	account, err := a.next.Get(ctx, address)

	status := metrics.StatusFromError(err)
	a.metrics.RecordOperation(ctx, "ledger", "account_get", status)
	a.metrics.RecordDuration(ctx, "ledger", "account_get", time.Since(start), status)

	return account, err
}

// Fund records metrics for account funding.
func (a *accountUseCaseWithMetrics) Fund(
	ctx context.Context,
	address solana.PublicKey,
	lamports uint64,
) (*ledgerDomain.Account, error) {
	start := time.Now()
	account, err := a.next.Fund(ctx, address, lamports)

	status := metrics.StatusFromError(err)
	a.metrics.RecordOperation(ctx, "ledger", "account_fund", status)
	a.metrics.RecordDuration(ctx, "ledger", "account_fund", time.Since(start), status)

	return account, err
}
