// Package service implements the guard record manager and the lockers that make guard
// creation exclusive across concurrent transactions and processes.
package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/binary"
	"sync"

	"github.com/gagliardetto/solana-go"

	aclDomain "github.com/allisson/tokenacl/internal/acl/domain"
	"github.com/allisson/tokenacl/internal/database"
	apperrors "github.com/allisson/tokenacl/internal/errors"
)

// Locker grants exclusive use of a key for the lifetime of the transaction bound to
// ctx. A held key yields aclDomain.ErrGuardHeld immediately; lockers never wait.
type Locker interface {
	Acquire(ctx context.Context, key solana.PublicKey) error
}

// KeyedLocker is an in-process lease table. Leases are released by the transaction
// completion hook, after commit or rollback.
type KeyedLocker struct {
	mu     sync.Mutex
	leases map[solana.PublicKey]struct{}
}

// NewKeyedLocker creates an empty KeyedLocker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{leases: make(map[solana.PublicKey]struct{})}
}

// Acquire implements Locker.
func (l *KeyedLocker) Acquire(ctx context.Context, key solana.PublicKey) error {
	l.mu.Lock()
	if _, held := l.leases[key]; held {
		l.mu.Unlock()
		return aclDomain.ErrGuardHeld
	}
	l.leases[key] = struct{}{}
	l.mu.Unlock()

	if !database.OnTxDone(ctx, func() { l.release(key) }) {
		l.release(key)
		return aclDomain.ErrGuardOutsideTransaction
	}
	return nil
}

// Held reports whether key is currently leased.
func (l *KeyedLocker) Held(key solana.PublicKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, held := l.leases[key]
	return held
}

func (l *KeyedLocker) release(key solana.PublicKey) {
	l.mu.Lock()
	delete(l.leases, key)
	l.mu.Unlock()
}

// PostgreSQLLocker takes transaction-scoped advisory locks, so leases are shared by
// every process using the same database and vanish with the transaction.
type PostgreSQLLocker struct {
	db *sql.DB
}

// NewPostgreSQLLocker creates a new PostgreSQLLocker.
func NewPostgreSQLLocker(db *sql.DB) *PostgreSQLLocker {
	return &PostgreSQLLocker{db: db}
}

// Acquire implements Locker.
func (l *PostgreSQLLocker) Acquire(ctx context.Context, key solana.PublicKey) error {
	if !database.InTx(ctx) {
		return aclDomain.ErrGuardOutsideTransaction
	}
	querier := database.GetTx(ctx, l.db)

	hi, lo := advisoryKey(key)
	var acquired bool
	err := querier.QueryRowContext(ctx, `SELECT pg_try_advisory_xact_lock($1, $2)`, hi, lo).Scan(&acquired)
	if err != nil {
		return apperrors.Wrap(err, "failed to acquire advisory lock")
	}
	if !acquired {
		return aclDomain.ErrGuardHeld
	}
	return nil
}

// advisoryKey folds each 16-byte half of an address into one int4 of the two-key
// advisory lock space. Distinct addresses collide with probability 2^-64, which
// only costs a spurious ErrGuardHeld.
func advisoryKey(key solana.PublicKey) (int32, int32) {
	fold := func(half []byte) int32 {
		var v uint32
		for i := 0; i < len(half); i += 4 {
			v ^= binary.BigEndian.Uint32(half[i : i+4])
		}
		return int32(v) //nolint:gosec // bit reinterpretation
	}
	return fold(key[:16]), fold(key[16:])
}

// MySQLLocker takes named locks on a dedicated session. MySQL named locks belong
// to the session rather than the transaction, so the session is held until the
// transaction bound to ctx finishes and then released back to the pool. Each
// in-flight lease therefore uses one extra pooled connection.
type MySQLLocker struct {
	db *sql.DB
}

// NewMySQLLocker creates a new MySQLLocker.
func NewMySQLLocker(db *sql.DB) *MySQLLocker {
	return &MySQLLocker{db: db}
}

// mysqlLockName fits the 64 character limit on lock names.
func mysqlLockName(key solana.PublicKey) string {
	return "tokenacl_guard_" + key.String()
}

// Acquire implements Locker.
func (l *MySQLLocker) Acquire(ctx context.Context, key solana.PublicKey) error {
	if !database.InTx(ctx) {
		return aclDomain.ErrGuardOutsideTransaction
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to reserve lock session")
	}

	name := mysqlLockName(key)
	var acquired sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, 0)`, name).Scan(&acquired); err != nil {
		_ = conn.Close()
		return apperrors.Wrap(err, "failed to acquire named lock")
	}
	if !acquired.Valid || acquired.Int64 != 1 {
		_ = conn.Close()
		return aclDomain.ErrGuardHeld
	}

	release := func() { releaseNamedLock(context.WithoutCancel(ctx), conn, name) }
	if !database.OnTxDone(ctx, release) {
		release()
		return aclDomain.ErrGuardOutsideTransaction
	}
	return nil
}

// releaseNamedLock frees name and returns conn to the pool. A session whose lock
// could not be released is discarded instead, which drops the lock server side.
func releaseNamedLock(ctx context.Context, conn *sql.Conn, name string) {
	if _, err := conn.ExecContext(ctx, `SELECT RELEASE_LOCK(?)`, name); err != nil {
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	_ = conn.Close()
}
