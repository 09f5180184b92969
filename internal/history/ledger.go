package history

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/solcash/backend/internal/models"
	"github.com/solcash/backend/internal/store"
)

// StoreKey is the fixed key the history persists under.
const StoreKey = "transactions"

// Ledger is the append-only local history of completed payments, both sent
// and received. It exclusively owns the record sequence: appends are
// serialized internally (append is read-modify-write against the store, so
// unserialized writers would lose updates) and the whole sequence is persisted
// synchronously before Append returns. There are no update or delete
// operations.
type Ledger struct {
	store store.Store
	key   string

	mu      sync.Mutex
	records []models.TransactionRecord
	nextID  int
}

// Load reads the persisted sequence (a missing key loads as empty) and seeds
// the id counter past the highest existing id, so ids only ever move forward
// within a process.
func Load(ctx context.Context, st store.Store, key string) (*Ledger, error) {
	records, err := st.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	next := 1
	for _, r := range records {
		if n, err := strconv.Atoi(r.ID); err == nil && n >= next {
			next = n + 1
		}
	}
	return &Ledger{store: st, key: key, records: records, nextID: next}, nil
}

// Append assigns the next sequential id, prepends the record (most recent
// first) and persists the full sequence before returning. The stored record,
// with its id filled in, is returned. On a persistence error nothing is
// appended.
func (l *Ledger) Append(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec.ID = strconv.Itoa(l.nextID)
	updated := make([]models.TransactionRecord, 0, len(l.records)+1)
	updated = append(updated, rec)
	updated = append(updated, l.records...)

	if err := l.store.Set(ctx, l.key, updated); err != nil {
		return models.TransactionRecord{}, fmt.Errorf("persist history: %w", err)
	}
	l.records = updated
	l.nextID++
	return rec, nil
}

// List returns the records most recent first, as stored.
func (l *Ledger) List() []models.TransactionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.TransactionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of recorded payments.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
