package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/allisson/tokenacl/internal/database"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

// MemoryTransactionRecordRepository keeps submission outcomes in process memory.
// Records created inside a transaction reserve their signature at once and become
// visible only if that transaction commits.
type MemoryTransactionRecordRepository struct {
	mu          sync.RWMutex
	byID        map[uuid.UUID]*ledgerDomain.TransactionRecord
	bySignature map[string]uuid.UUID
	reserved    map[string]struct{}
}

// NewMemoryTransactionRecordRepository creates an empty in-memory record store.
func NewMemoryTransactionRecordRepository() *MemoryTransactionRecordRepository {
	return &MemoryTransactionRecordRepository{
		byID:        make(map[uuid.UUID]*ledgerDomain.TransactionRecord),
		bySignature: make(map[string]uuid.UUID),
		reserved:    make(map[string]struct{}),
	}
}

// Create stores a record; a repeated or reserved signature yields
// ErrTransactionAlreadyProcessed.
func (r *MemoryTransactionRecordRepository) Create(ctx context.Context, record *ledgerDomain.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySignature[record.Signature]; ok {
		return ledgerDomain.ErrTransactionAlreadyProcessed
	}
	if _, ok := r.reserved[record.Signature]; ok {
		return ledgerDomain.ErrTransactionAlreadyProcessed
	}

	stored := *record
	if database.OnTxResult(ctx, func(committed bool) { r.settle(&stored, committed) }) {
		r.reserved[stored.Signature] = struct{}{}
		return nil
	}
	r.store(&stored)
	return nil
}

func (r *MemoryTransactionRecordRepository) settle(record *ledgerDomain.TransactionRecord, committed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.reserved, record.Signature)
	if committed {
		r.store(record)
	}
}

// store indexes record. Caller must hold r.mu.
func (r *MemoryTransactionRecordRepository) store(record *ledgerDomain.TransactionRecord) {
	r.byID[record.ID] = record
	r.bySignature[record.Signature] = record.ID
}

// GetByID retrieves a record by id.
func (r *MemoryTransactionRecordRepository) GetByID(
	_ context.Context,
	id uuid.UUID,
) (*ledgerDomain.TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, ledgerDomain.ErrTransactionRecordNotFound
	}
	out := *record
	return &out, nil
}

// GetBySignature retrieves a record by transaction signature.
func (r *MemoryTransactionRecordRepository) GetBySignature(
	_ context.Context,
	signature string,
) (*ledgerDomain.TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySignature[signature]
	if !ok {
		return nil, ledgerDomain.ErrTransactionRecordNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

// List retrieves records newest first. UUIDv7 ids sort by creation time.
func (r *MemoryTransactionRecordRepository) List(
	_ context.Context,
	offset, limit int,
) ([]*ledgerDomain.TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return -slices.Compare(a[:], b[:])
	})

	records := make([]*ledgerDomain.TransactionRecord, 0)
	for i := offset; i < len(ids) && len(records) < limit; i++ {
		out := *r.byID[ids[i]]
		records = append(records, &out)
	}
	return records, nil
}
