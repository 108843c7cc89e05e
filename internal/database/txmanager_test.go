package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTxManager(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	txManager := NewTxManager(db)
	assert.IsType(t, &sqlTxManager{}, txManager)
}

func TestWithTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		assert.IsType(t, &sql.Tx{}, ctx.Value(txKey{}))
		assert.True(t, InTx(ctx))
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	txManager := NewTxManager(db)
	err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.Equal(t, assert.AnError, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_NestedJoinsOuterTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// a single begin/commit pair proves the inner call did not open its own transaction
	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err = txManager.WithTx(context.Background(), func(outer context.Context) error {
		return txManager.WithTx(outer, func(inner context.Context) error {
			assert.Same(t, outer.Value(txKey{}), inner.Value(txKey{}))
			return nil
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_CompletionHooks(t *testing.T) {
	t.Run("run after commit in reverse order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectCommit()

		var order []string
		txManager := NewTxManager(db)
		err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
			assert.True(t, OnTxDone(ctx, func() { order = append(order, "first") }))
			assert.True(t, OnTxDone(ctx, func() { order = append(order, "second") }))
			assert.Empty(t, order)
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"second", "first"}, order)
	})

	t.Run("run after rollback", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		released := false
		txManager := NewTxManager(db)
		err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
			OnTxDone(ctx, func() { released = true })
			return assert.AnError
		})

		assert.Error(t, err)
		assert.True(t, released)
	})

	t.Run("result reports commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectCommit()

		var committed *bool
		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			assert.True(t, OnTxResult(ctx, func(ok bool) { committed = &ok }))
			return nil
		})

		require.NoError(t, err)
		require.NotNil(t, committed)
		assert.True(t, *committed)
	})

	t.Run("result reports failed commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

		var committed *bool
		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			OnTxResult(ctx, func(ok bool) { committed = &ok })
			return nil
		})

		require.Error(t, err)
		require.NotNil(t, committed)
		assert.False(t, *committed)
	})

	t.Run("result reports rollback", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		var committed *bool
		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			OnTxResult(ctx, func(ok bool) { committed = &ok })
			return assert.AnError
		})

		require.ErrorIs(t, err, assert.AnError)
		require.NotNil(t, committed)
		assert.False(t, *committed)
	})
}

func TestOnTxDone_WithoutTransaction(t *testing.T) {
	called := false
	assert.False(t, OnTxDone(context.Background(), func() { called = true }))
	assert.False(t, called)
}

func TestWithCompletionHooks_RunOnce(t *testing.T) {
	ctx, done := WithCompletionHooks(context.Background())

	count := 0
	OnTxDone(ctx, func() { count++ })
	done(true)
	done(false)

	assert.Equal(t, 1, count)
	assert.False(t, OnTxDone(ctx, func() { count++ }))
}

func TestGetTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, db, GetTx(context.Background(), db))

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		assert.IsType(t, &sql.Tx{}, GetTx(ctx, db))
		return nil
	})
	assert.NoError(t, err)
}

func TestWithTx_DriverFailures(t *testing.T) {
	t.Run("BeginFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin().WillReturnError(assert.AnError)

		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			t.Fatal("fn must not run without a transaction")
			return nil
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "begin transaction")
	})

	t.Run("RollbackFailsKeepsCause", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		rollbackErr := sql.ErrConnDone
		mock.ExpectRollback().WillReturnError(rollbackErr)

		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.ErrorIs(t, err, rollbackErr)
	})

	t.Run("CommitFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(assert.AnError)

		err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "commit transaction")
	})
}
