package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// txKey is a context key type for storing database transactions.
type txKey struct{}

// hooksKey is a context key type for storing completion hooks of the active transaction.
type hooksKey struct{}

// Querier represents a database query executor (either *sql.DB or *sql.Tx).
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager manages database transactions.
//
// A WithTx call made with a context that already carries a transaction joins it, so
// use cases can be composed inside a single atomic unit of work.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// sqlTxManager implements TxManager for SQL databases.
type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager for the given database.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// WithTx runs fn inside a transaction, joining one already bound to ctx.
// Completion hooks run after commit or rollback.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	ctx, done := WithCompletionHooks(context.WithValue(ctx, txKey{}, tx))
	defer func() { done(err == nil) }()

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetTx retrieves a transaction from context, or returns the DB connection.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// InTx reports whether ctx carries an active SQL transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

type completionHooks struct {
	mu  sync.Mutex
	fns []func(committed bool)
	ran bool
}

// WithCompletionHooks attaches a hook list to ctx. The returned function runs every
// registered hook once, in reverse registration order, reporting whether the
// transaction committed. TxManager implementations call it after commit or rollback.
func WithCompletionHooks(ctx context.Context) (context.Context, func(committed bool)) {
	hooks := &completionHooks{}
	return context.WithValue(ctx, hooksKey{}, hooks), hooks.run
}

// OnTxDone registers fn to run when the transaction bound to ctx finishes, whatever
// its outcome. It returns false, without registering, when ctx has no transaction.
func OnTxDone(ctx context.Context, fn func()) bool {
	return OnTxResult(ctx, func(bool) { fn() })
}

// OnTxResult is OnTxDone for hooks that depend on whether the transaction committed.
func OnTxResult(ctx context.Context, fn func(committed bool)) bool {
	hooks, ok := ctx.Value(hooksKey{}).(*completionHooks)
	if !ok {
		return false
	}
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.ran {
		return false
	}
	hooks.fns = append(hooks.fns, fn)
	return true
}

func (h *completionHooks) run(committed bool) {
	h.mu.Lock()
	if h.ran {
		h.mu.Unlock()
		return
	}
	fns := h.fns
	h.fns = nil
	h.ran = true
	h.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i](committed)
	}
}
