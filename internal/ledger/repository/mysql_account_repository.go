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

// MySQLAccountRepository stores ledger accounts in MySQL.
//
// Schema: accounts(address BINARY(32) PRIMARY KEY, owner BINARY(32),
// lamports BIGINT UNSIGNED, data LONGBLOB, updated_at DATETIME(6)).
type MySQLAccountRepository struct {
	db *sql.DB
}

// NewMySQLAccountRepository creates a new MySQLAccountRepository.
func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{db: db}
}

// Get loads the account at address, locking the row when called inside a transaction.
func (m *MySQLAccountRepository) Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT owner, lamports, data FROM accounts WHERE address = ?`
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
func (m *MySQLAccountRepository) Create(ctx context.Context, account *ledgerDomain.Account) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO accounts (address, owner, lamports, data, updated_at)
			  VALUES (?, ?, ?, ?, NOW(6))`

	_, err := querier.ExecContext(
		ctx,
		query,
		account.Address.Bytes(),
		account.Owner.Bytes(),
		account.Lamports,
		account.Data,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return ledgerDomain.ErrAccountAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create account")
	}
	return nil
}

// Update overwrites owner, lamports and data of an existing account.
//
// MySQL reports zero affected rows when the new values equal the stored ones, so the
// existence check is a separate locked read.
func (m *MySQLAccountRepository) Update(ctx context.Context, account *ledgerDomain.Account) error {
	if _, err := m.Get(ctx, account.Address); err != nil {
		return err
	}

	querier := database.GetTx(ctx, m.db)

	query := `UPDATE accounts SET owner = ?, lamports = ?, data = ?, updated_at = NOW(6)
			  WHERE address = ?`

	_, err := querier.ExecContext(
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
	return nil
}

// Delete removes the account at address.
func (m *MySQLAccountRepository) Delete(ctx context.Context, address solana.PublicKey) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM accounts WHERE address = ?`, address.Bytes())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete account")
	}
	return checkAffected(result)
}
