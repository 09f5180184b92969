package ledgerclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solcash/backend/internal/models"
)

// Memory is an in-process ledger simulation. Submit records the transaction
// and indexes it by its reference tag; the query calls then behave like a
// cluster whose transactions confirm immediately. It backs cmd/api in local
// mode and the end-to-end tests.
type Memory struct {
	mu       sync.Mutex
	slot     uint64
	byRef    map[models.ReferenceID]*Transaction
	bySig    map[Signature]*Transaction
	failures int
}

var _ Client = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		byRef: make(map[models.ReferenceID]*Transaction),
		bySig: make(map[Signature]*Transaction),
	}
}

// FailNext makes the next n calls on any method return ErrUnavailable.
func (m *Memory) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// takeFailure consumes one scripted failure. Callers hold m.mu.
func (m *Memory) takeFailure() bool {
	if m.failures > 0 {
		m.failures--
		return true
	}
	return false
}

func (m *Memory) GetRecentBlockHandle(ctx context.Context) (BlockHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeFailure() {
		return "", ErrUnavailable
	}
	m.slot++
	return BlockHandle(fmt.Sprintf("block-%d", m.slot)), nil
}

func (m *Memory) Submit(ctx context.Context, tx *Transaction) (Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeFailure() {
		return "", ErrUnavailable
	}
	if tx.RecentBlock == "" {
		return "", fmt.Errorf("transaction carries no recent block handle")
	}
	cp := *tx
	cp.Signature = Signature(uuid.NewString())
	cp.Status = StatusConfirmed
	cp.BlockTime = time.Now()
	m.bySig[cp.Signature] = &cp
	if cp.Reference != "" {
		m.byRef[cp.Reference] = &cp
	}
	return cp.Signature, nil
}

func (m *Memory) FindByReference(ctx context.Context, ref models.ReferenceID) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeFailure() {
		return nil, ErrUnavailable
	}
	tx, ok := m.byRef[ref]
	if !ok {
		return nil, ErrNotFoundYet
	}
	cp := *tx
	return &cp, nil
}

func (m *Memory) GetTransactionDetail(ctx context.Context, sig Signature) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.takeFailure() {
		return nil, ErrUnavailable
	}
	tx, ok := m.bySig[sig]
	if !ok {
		return nil, fmt.Errorf("unknown signature %s", sig)
	}
	cp := *tx
	return &cp, nil
}
