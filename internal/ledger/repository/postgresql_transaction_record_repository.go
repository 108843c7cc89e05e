package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/tokenacl/internal/database"
	apperrors "github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// PostgreSQLTransactionRecordRepository stores submission outcomes in PostgreSQL.
type PostgreSQLTransactionRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLTransactionRecordRepository creates a new PostgreSQLTransactionRecordRepository.
func NewPostgreSQLTransactionRecordRepository(db *sql.DB) *PostgreSQLTransactionRecordRepository {
	return &PostgreSQLTransactionRecordRepository{db: db}
}

// Create inserts a record; a repeated signature yields ErrTransactionAlreadyProcessed.
func (p *PostgreSQLTransactionRecordRepository) Create(
	ctx context.Context,
	record *ledgerDomain.TransactionRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO transaction_records
			  (id, signature, fee_payer, status, error_code, error_message, instruction_count, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.Signature,
		record.FeePayer,
		string(record.Status),
		nullableCode(record.ErrorCode),
		record.ErrorMessage,
		record.InstructionCount,
		record.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return ledgerDomain.ErrTransactionAlreadyProcessed
		}
		return apperrors.Wrap(err, "failed to create transaction record")
	}
	return nil
}

// GetByID retrieves a record by id.
func (p *PostgreSQLTransactionRecordRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*ledgerDomain.TransactionRecord, error) {
	query := `SELECT id, signature, fee_payer, status, error_code, error_message, instruction_count, created_at
			  FROM transaction_records WHERE id = $1`
	return p.get(ctx, query, id)
}

// GetBySignature retrieves a record by transaction signature.
func (p *PostgreSQLTransactionRecordRepository) GetBySignature(
	ctx context.Context,
	signature string,
) (*ledgerDomain.TransactionRecord, error) {
	query := `SELECT id, signature, fee_payer, status, error_code, error_message, instruction_count, created_at
			  FROM transaction_records WHERE signature = $1`
	return p.get(ctx, query, signature)
}

func (p *PostgreSQLTransactionRecordRepository) get(
	ctx context.Context,
	query string,
	arg any,
) (*ledgerDomain.TransactionRecord, error) {
	querier := database.GetTx(ctx, p.db)

	var record ledgerDomain.TransactionRecord
	var status string
	var errorCode sql.NullInt64
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&record.ID,
		&record.Signature,
		&record.FeePayer,
		&status,
		&errorCode,
		&record.ErrorMessage,
		&record.InstructionCount,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledgerDomain.ErrTransactionRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get transaction record")
	}

	record.Status = ledgerDomain.TransactionStatus(status)
	record.ErrorCode = codeFromNull(errorCode)
	return &record, nil
}

func nullableCode(code *uint32) sql.NullInt64 {
	if code == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*code), Valid: true}
}

func codeFromNull(code sql.NullInt64) *uint32 {
	if !code.Valid {
		return nil
	}
	v := uint32(code.Int64)
	return &v
}

// List retrieves records newest first. UUIDv7 ids sort by creation time.
func (p *PostgreSQLTransactionRecordRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*ledgerDomain.TransactionRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, signature, fee_payer, status, error_code, error_message, instruction_count, created_at
			  FROM transaction_records
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transaction records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*ledgerDomain.TransactionRecord, 0)
	for rows.Next() {
		var record ledgerDomain.TransactionRecord
		var status string
		var errorCode sql.NullInt64
		err := rows.Scan(
			&record.ID,
			&record.Signature,
			&record.FeePayer,
			&status,
			&errorCode,
			&record.ErrorMessage,
			&record.InstructionCount,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan transaction record row")
		}
		record.Status = ledgerDomain.TransactionStatus(status)
		record.ErrorCode = codeFromNull(errorCode)
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating transaction record rows")
	}
	return records, nil
}
