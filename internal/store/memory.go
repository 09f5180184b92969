package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/solcash/backend/internal/models"
)

// Memory keeps record sequences in process memory. Values are held as
// marshaled JSON, so a Get always round-trips through the same encoding the
// Postgres store uses.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]models.TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	var records []models.TransactionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode records for %q: %w", key, err)
	}
	return records, nil
}

func (m *Memory) Set(ctx context.Context, key string, records []models.TransactionRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records for %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}
