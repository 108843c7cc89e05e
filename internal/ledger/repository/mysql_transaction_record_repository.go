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

// MySQLTransactionRecordRepository stores submission outcomes in MySQL, with the id
// kept as BINARY(16).
type MySQLTransactionRecordRepository struct {
	db *sql.DB
}

// NewMySQLTransactionRecordRepository creates a new MySQLTransactionRecordRepository.
func NewMySQLTransactionRecordRepository(db *sql.DB) *MySQLTransactionRecordRepository {
	return &MySQLTransactionRecordRepository{db: db}
}

// Create inserts a record; a repeated signature yields ErrTransactionAlreadyProcessed.
func (m *MySQLTransactionRecordRepository) Create(
	ctx context.Context,
	record *ledgerDomain.TransactionRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `INSERT INTO transaction_records
			  (id, signature, fee_payer, status, error_code, error_message, instruction_count, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		record.Signature,
		record.FeePayer,
		string(record.Status),
		nullableCode(record.ErrorCode),
		record.ErrorMessage,
		record.InstructionCount,
		record.CreatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return ledgerDomain.ErrTransactionAlreadyProcessed
		}
		return apperrors.Wrap(err, "failed to create transaction record")
	}
	return nil
}

// GetByID retrieves a record by id.
func (m *MySQLTransactionRecordRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*ledgerDomain.TransactionRecord, error) {
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}
	query := `SELECT id, signature, fee_payer, status, error_code, error_message, instruction_count, created_at
			  FROM transaction_records WHERE id = ?`
	return m.get(ctx, query, idBytes)
}

// GetBySignature retrieves a record by transaction signature.
func (m *MySQLTransactionRecordRepository) GetBySignature(
	ctx context.Context,
	signature string,
) (*ledgerDomain.TransactionRecord, error) {
	query := `SELECT id, signature, fee_payer, status, error_code, error_message, instruction_count, created_at
			  FROM transaction_records WHERE signature = ?`
	return m.get(ctx, query, signature)
}

func (m *MySQLTransactionRecordRepository) get(
	ctx context.Context,
	query string,
	arg any,
) (*ledgerDomain.TransactionRecord, error) {
	querier := database.GetTx(ctx, m.db)

	var record ledgerDomain.TransactionRecord
	var idBytes []byte
	var status string
	var errorCode sql.NullInt64
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&idBytes,
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

	if err := record.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	record.Status = ledgerDomain.TransactionStatus(status)
	record.ErrorCode = codeFromNull(errorCode)
	return &record, nil
}

// List retrieves records newest first. UUIDv7 ids sort by creation time.
func (m *MySQLTransactionRecordRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*ledgerDomain.TransactionRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, signature, fee_payer, status, error_code, error_message, instruction_count, created_at
			  FROM transaction_records
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

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
		var idBytes []byte
		var status string
		var errorCode sql.NullInt64
		err := rows.Scan(
			&idBytes,
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
		if err := record.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
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
