package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

type businessMetricsMock struct {
	mock.Mock
}

func (m *businessMetricsMock) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *businessMetricsMock) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *businessMetricsMock) RecordDecision(ctx context.Context, program, operation, outcome string) {
	m.Called(ctx, program, operation, outcome)
}

type transactionUseCaseMock struct {
	mock.Mock
}

func (m *transactionUseCaseMock) Submit(
	ctx context.Context,
	tx *ledgerDomain.Transaction,
) (*ledgerDomain.TransactionRecord, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerDomain.TransactionRecord), args.Error(1)
}

func (m *transactionUseCaseMock) Get(ctx context.Context, id uuid.UUID) (*ledgerDomain.TransactionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerDomain.TransactionRecord), args.Error(1)
}

func (m *transactionUseCaseMock) List(ctx context.Context, offset, limit int) ([]*ledgerDomain.TransactionRecord, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledgerDomain.TransactionRecord), args.Error(1)
}

func TestTransactionUseCaseWithMetrics_Submit(t *testing.T) {
	ctx := context.Background()
	tx := &ledgerDomain.Transaction{FeePayer: solana.NewWallet().PublicKey()}

	t.Run("success", func(t *testing.T) {
		next := &transactionUseCaseMock{}
		m := &businessMetricsMock{}
		record := &ledgerDomain.TransactionRecord{Status: ledgerDomain.TransactionStatusCommitted}

		next.On("Submit", ctx, tx).Return(record, nil)
		m.On("RecordOperation", ctx, "ledger", "transaction_submit", "success").Return()
		m.On("RecordDuration", ctx, "ledger", "transaction_submit", mock.AnythingOfType("time.Duration"), "success").
			Return()

		got, err := NewTransactionUseCaseWithMetrics(next, m).Submit(ctx, tx)
		assert.NoError(t, err)
		assert.Equal(t, record, got)
		m.AssertExpectations(t)
		next.AssertExpectations(t)
	})

	t.Run("rejected", func(t *testing.T) {
		next := &transactionUseCaseMock{}
		m := &businessMetricsMock{}
		rejection := ledgerDomain.CustomError(999999999)

		next.On("Submit", ctx, tx).Return(nil, rejection)
		m.On("RecordOperation", ctx, "ledger", "transaction_submit", "rejected").Return()
		m.On("RecordDuration", ctx, "ledger", "transaction_submit", mock.AnythingOfType("time.Duration"), "rejected").
			Return()

		_, err := NewTransactionUseCaseWithMetrics(next, m).Submit(ctx, tx)
		assert.Equal(t, rejection, err)
		m.AssertExpectations(t)
	})
}

func TestTransactionUseCaseWithMetrics_List(t *testing.T) {
	ctx := context.Background()
	next := &transactionUseCaseMock{}
	m := &businessMetricsMock{}
	records := []*ledgerDomain.TransactionRecord{{Status: ledgerDomain.TransactionStatusFailed}}

	next.On("List", ctx, 0, 50).Return(records, nil)
	m.On("RecordOperation", ctx, "ledger", "transaction_list", "success").Return()
	m.On("RecordDuration", ctx, "ledger", "transaction_list", mock.AnythingOfType("time.Duration"), "success").
		Return()

	got, err := NewTransactionUseCaseWithMetrics(next, m).List(ctx, 0, 50)
	assert.NoError(t, err)
	assert.Equal(t, records, got)
	m.AssertExpectations(t)
}
