package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/allisson/tokenacl/internal/database"
	apperrors "github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// PostgreSQLAccountRepository stores ledger accounts in PostgreSQL.
//
// Schema: accounts(address BYTEA PRIMARY KEY, owner BYTEA, lamports BIGINT,
// data BYTEA, updated_at TIMESTAMPTZ).
type PostgreSQLAccountRepository struct {
	db *sql.DB
}

// NewPostgreSQLAccountRepository creates a new PostgreSQLAccountRepository.
func NewPostgreSQLAccountRepository(db *sql.DB) *PostgreSQLAccountRepository {
	return &PostgreSQLAccountRepository{db: db}
}

// Get loads the account at address, locking the row when called inside a transaction.
func (p *PostgreSQLAccountRepository) Get(
	ctx context.Context,
	address solana.PublicKey,
) (*ledgerDomain.Account, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT owner, lamports, data FROM accounts WHERE address = $1`
	if database.InTx(ctx) {
		query += ` FOR UPDATE`
	}

	var owner, data []byte
	account := &ledgerDomain.Account{Address: address}
	err := querier.QueryRowContext(ctx, query, address.Bytes()).Scan(&owner, &account.Lamports, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledgerDomain.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get account")
	}

	account.Owner = solana.PublicKeyFromBytes(owner)
	account.Data = data
	if account.Data == nil {
		account.Data = []byte{}
	}
	return account, nil
}

// Create inserts a new account; an occupied address yields ErrAccountAlreadyExists.
func (p *PostgreSQLAccountRepository) Create(ctx context.Context, account *ledgerDomain.Account) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO accounts (address, owner, lamports, data, updated_at)
			  VALUES ($1, $2, $3, $4, NOW())`

	_, err := querier.ExecContext(
		ctx,
		query,
		account.Address.Bytes(),
		account.Owner.Bytes(),
		account.Lamports,
		account.Data,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return ledgerDomain.ErrAccountAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create account")
	}
	return nil
}

// Update overwrites owner, lamports and data of an existing account.
func (p *PostgreSQLAccountRepository) Update(ctx context.Context, account *ledgerDomain.Account) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE accounts SET owner = $1, lamports = $2, data = $3, updated_at = NOW()
			  WHERE address = $4`

	result, err := querier.ExecContext(
		ctx,
		query,
		account.Owner.Bytes(),
		account.Lamports,
		account.Data,
		account.Address.Bytes(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update account")
	}
	return checkAffected(result)
}

// Delete removes the account at address.
func (p *PostgreSQLAccountRepository) Delete(ctx context.Context, address solana.PublicKey) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM accounts WHERE address = $1`, address.Bytes())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete account")
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		return ledgerDomain.ErrAccountNotFound
	}
	return nil
}
