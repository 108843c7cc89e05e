package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gagliardetto/solana-go"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

func TestMySQLAccountRepository_Get(t *testing.T) {
	address := solana.NewWallet().PublicKey()

	t.Run("found", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		repo := NewMySQLAccountRepository(db)

		mock.ExpectQuery(`SELECT owner, lamports, data FROM accounts WHERE address = \?$`).
			WithArgs(address.Bytes()).
			WillReturnRows(sqlmock.NewRows([]string{"owner", "lamports", "data"}).
				AddRow(solana.SystemProgramID.Bytes(), int64(7), []byte{}))

		account, err := repo.Get(context.Background(), address)
		require.NoError(t, err)
		assert.True(t, account.IsSystemOwned())
		assert.Equal(t, uint64(7), account.Lamports)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		repo := NewMySQLAccountRepository(db)

		mock.ExpectQuery(`SELECT owner, lamports, data FROM accounts`).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), address)
		assert.ErrorIs(t, err, ledgerDomain.ErrAccountNotFound)
	})
}

func TestMySQLAccountRepository_Create(t *testing.T) {
	account := &ledgerDomain.Account{
		Address: solana.NewWallet().PublicKey(),
		Owner:   solana.SystemProgramID,
		Data:    []byte{1},
	}

	t.Run("success", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		repo := NewMySQLAccountRepository(db)

		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(account.Address.Bytes(), account.Owner.Bytes(), account.Lamports, account.Data).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(context.Background(), account))
	})

	t.Run("duplicate entry", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		repo := NewMySQLAccountRepository(db)

		mock.ExpectExec(`INSERT INTO accounts`).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		assert.ErrorIs(t, repo.Create(context.Background(), account), ledgerDomain.ErrAccountAlreadyExists)
	})
}

func TestMySQLAccountRepository_Update(t *testing.T) {
	account := &ledgerDomain.Account{
		Address:  solana.NewWallet().PublicKey(),
		Owner:    solana.SystemProgramID,
		Lamports: 3,
		Data:     []byte{},
	}

	t.Run("existing account", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		repo := NewMySQLAccountRepository(db)

		mock.ExpectQuery(`SELECT owner, lamports, data FROM accounts`).
			WillReturnRows(sqlmock.NewRows([]string{"owner", "lamports", "data"}).
				AddRow(solana.SystemProgramID.Bytes(), int64(3), []byte{}))
		mock.ExpectExec(`UPDATE accounts SET owner = \?, lamports = \?, data = \?`).
			WithArgs(account.Owner.Bytes(), account.Lamports, account.Data, account.Address.Bytes()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Update(context.Background(), account))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account", func(t *testing.T) {
		db, mock := newPostgresMock(t)
		repo := NewMySQLAccountRepository(db)

		mock.ExpectQuery(`SELECT owner, lamports, data FROM accounts`).WillReturnError(sql.ErrNoRows)

		assert.ErrorIs(t, repo.Update(context.Background(), account), ledgerDomain.ErrAccountNotFound)
	})
}

func TestMySQLAccountRepository_Delete(t *testing.T) {
	db, mock := newPostgresMock(t)
	repo := NewMySQLAccountRepository(db)
	address := solana.NewWallet().PublicKey()

	mock.ExpectExec(`DELETE FROM accounts WHERE address = \?`).
		WithArgs(address.Bytes()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), address), ledgerDomain.ErrAccountNotFound)
}
