// Package usecase implements the ledger runtime: signature verification, atomic
// instruction dispatch to registered programs and submission records.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/allisson/tokenacl/internal/database"
	apperrors "github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// transactionUseCase implements TransactionUseCase.
type transactionUseCase struct {
	txManager database.TxManager
	records   TransactionRecordRepository
	programs  map[solana.PublicKey]Program
	logger    *slog.Logger
}

// NewTransactionUseCase creates a TransactionUseCase dispatching to programs.
func NewTransactionUseCase(
	txManager database.TxManager,
	records TransactionRecordRepository,
	logger *slog.Logger,
	programs ...Program,
) TransactionUseCase {
	registry := make(map[solana.PublicKey]Program, len(programs))
	for _, p := range programs {
		registry[p.ProgramID()] = p
	}
	return &transactionUseCase{
		txManager: txManager,
		records:   records,
		programs:  registry,
		logger:    logger,
	}
}

// Submit implements TransactionUseCase.
func (t *transactionUseCase) Submit(
	ctx context.Context,
	tx *ledgerDomain.Transaction,
) (*ledgerDomain.TransactionRecord, error) {
	if len(tx.Instructions) == 0 {
		return nil, ledgerDomain.ErrEmptyTransaction
	}

	signers, err := tx.VerifiedSigners()
	if err != nil {
		return nil, err
	}
	if !signers.Has(tx.FeePayer) {
		return nil, ledgerDomain.ErrMissingRequiredSignature
	}

	signature := tx.ID().String()
	record := &ledgerDomain.TransactionRecord{
		ID:               uuid.Must(uuid.NewV7()),
		Signature:        signature,
		FeePayer:         tx.FeePayer.String(),
		Status:           ledgerDomain.TransactionStatusCommitted,
		InstructionCount: len(tx.Instructions),
		CreatedAt:        time.Now().UTC(),
	}

	// The record is written first so the signature is claimed by the same atomic
	// unit that applies the instructions; a concurrent replay fails on it.
	execErr := t.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := t.records.Create(ctx, record); err != nil {
			return err
		}
		for i := range tx.Instructions {
			if err := t.execute(ctx, &tx.Instructions[i], signers); err != nil {
				return fmt.Errorf("instruction %d: %w", i, err)
			}
		}
		return nil
	})
	if execErr == nil {
		t.logger.Info("transaction committed",
			slog.String("signature", signature),
			slog.Int("instructions", len(tx.Instructions)),
		)
		return record, nil
	}
	if apperrors.Is(execErr, ledgerDomain.ErrTransactionAlreadyProcessed) {
		return nil, execErr
	}

	record.Status = ledgerDomain.TransactionStatusFailed
	record.ErrorMessage = execErr.Error()
	if programErr, ok := ledgerDomain.AsProgramError(execErr); ok {
		code := programErr.Code
		record.ErrorCode = &code
	}
	t.logger.Warn("transaction failed",
		slog.String("signature", signature),
		slog.Any("error", execErr),
	)

	// Failure records live outside the rolled-back transaction.
	if err := t.records.Create(ctx, record); err != nil {
		t.logger.Warn("failed to record transaction failure",
			slog.String("signature", signature),
			slog.Any("error", err),
		)
	}
	return record, execErr
}

func (t *transactionUseCase) execute(
	ctx context.Context,
	ix *ledgerDomain.Instruction,
	signers ledgerDomain.SignerSet,
) error {
	for _, meta := range ix.Accounts {
		if meta.IsSigner && !signers.Has(meta.PublicKey) {
			return ledgerDomain.ErrMissingRequiredSignature
		}
	}

	program, ok := t.programs[ix.ProgramID]
	if !ok {
		return ledgerDomain.ErrUnsupportedProgramID
	}

	return program.Process(ctx, &ledgerDomain.InstructionContext{
		ProgramID: ix.ProgramID,
		Accounts:  ix.Accounts,
		Data:      ix.Data,
		Signers:   signers,
	})
}

// Get implements TransactionUseCase.
func (t *transactionUseCase) Get(ctx context.Context, id uuid.UUID) (*ledgerDomain.TransactionRecord, error) {
	return t.records.GetByID(ctx, id)
}

// List implements TransactionUseCase.
func (t *transactionUseCase) List(ctx context.Context, offset, limit int) ([]*ledgerDomain.TransactionRecord, error) {
	return t.records.List(ctx, offset, limit)
}
