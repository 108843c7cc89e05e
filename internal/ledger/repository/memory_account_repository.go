package repository

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/allisson/tokenacl/internal/database"
	apperrors "github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// ErrTransactionConflict indicates an account read by a transaction was changed by
// another transaction before commit.
var ErrTransactionConflict = apperrors.Wrap(apperrors.ErrConflict, "transaction conflict")

type memoryTxKey struct{}

// memoryTx stages writes until commit. A nil entry in writes marks a deletion.
type memoryTx struct {
	mu     sync.Mutex
	reads  map[solana.PublicKey]uint64
	writes map[solana.PublicKey]*ledgerDomain.Account
}

// MemoryAccountRepository keeps accounts in process memory. It doubles as the
// database.TxManager for the memory driver: transactions stage their writes and commit
// them atomically, failing with ErrTransactionConflict when an account they read was
// changed concurrently.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]*ledgerDomain.Account
	versions map[solana.PublicKey]uint64
}

// NewMemoryAccountRepository creates an empty in-memory account store.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts: make(map[solana.PublicKey]*ledgerDomain.Account),
		versions: make(map[solana.PublicKey]uint64),
	}
}

// PingContext always succeeds; the store lives in process memory.
func (r *MemoryAccountRepository) PingContext(ctx context.Context) error {
	return nil
}

// WithTx runs fn against a staged view of the store and commits on success.
func (r *MemoryAccountRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok {
		return fn(ctx)
	}

	tx := &memoryTx{
		reads:  make(map[solana.PublicKey]uint64),
		writes: make(map[solana.PublicKey]*ledgerDomain.Account),
	}
	ctx = context.WithValue(ctx, memoryTxKey{}, tx)
	ctx, done := database.WithCompletionHooks(ctx)

	err := fn(ctx)
	if err == nil {
		err = r.commit(tx)
	}
	done(err == nil)
	return err
}

func (r *MemoryAccountRepository) commit(tx *memoryTx) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for address, version := range tx.reads {
		if r.versions[address] != version {
			return ErrTransactionConflict
		}
	}
	for address, account := range tx.writes {
		if account == nil {
			delete(r.accounts, address)
		} else {
			r.accounts[address] = account
		}
		r.versions[address]++
	}
	return nil
}

func txFromContext(ctx context.Context) (*memoryTx, bool) {
	tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx)
	return tx, ok
}

// load returns the committed account and its version. Caller must hold r.mu.
func (r *MemoryAccountRepository) load(address solana.PublicKey) (*ledgerDomain.Account, uint64) {
	return r.accounts[address], r.versions[address]
}

// view resolves address through the transaction overlay, recording the read.
func (r *MemoryAccountRepository) view(ctx context.Context, address solana.PublicKey) *ledgerDomain.Account {
	tx, ok := txFromContext(ctx)
	if !ok {
		r.mu.RLock()
		defer r.mu.RUnlock()
		account, _ := r.load(address)
		return account
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if staged, written := tx.writes[address]; written {
		return staged
	}

	r.mu.RLock()
	account, version := r.load(address)
	r.mu.RUnlock()
	if _, seen := tx.reads[address]; !seen {
		tx.reads[address] = version
	}
	return account
}

func (r *MemoryAccountRepository) write(ctx context.Context, address solana.PublicKey, account *ledgerDomain.Account) {
	if tx, ok := txFromContext(ctx); ok {
		tx.mu.Lock()
		tx.writes[address] = account
		tx.mu.Unlock()
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if account == nil {
		delete(r.accounts, address)
	} else {
		r.accounts[address] = account
	}
	r.versions[address]++
}

// Get returns a copy of the account at address.
func (r *MemoryAccountRepository) Get(ctx context.Context, address solana.PublicKey) (*ledgerDomain.Account, error) {
	account := r.view(ctx, address)
	if account == nil {
		return nil, ledgerDomain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// Create stores a new account; an occupied address yields ErrAccountAlreadyExists.
func (r *MemoryAccountRepository) Create(ctx context.Context, account *ledgerDomain.Account) error {
	if r.view(ctx, account.Address) != nil {
		return ledgerDomain.ErrAccountAlreadyExists
	}
	r.write(ctx, account.Address, account.Clone())
	return nil
}

// Update overwrites an existing account.
func (r *MemoryAccountRepository) Update(ctx context.Context, account *ledgerDomain.Account) error {
	if r.view(ctx, account.Address) == nil {
		return ledgerDomain.ErrAccountNotFound
	}
	r.write(ctx, account.Address, account.Clone())
	return nil
}

// Delete removes the account at address.
func (r *MemoryAccountRepository) Delete(ctx context.Context, address solana.PublicKey) error {
	if r.view(ctx, address) == nil {
		return ledgerDomain.ErrAccountNotFound
	}
	r.write(ctx, address, nil)
	return nil
}
