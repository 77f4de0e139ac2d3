package customer

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory dataset store for demo/development mode.
type MemoryStore struct {
	mu      sync.RWMutex
	records []ScoredRecord
	byID    map[string]int
}

// NewMemoryStore creates a new in-memory dataset store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

func (m *MemoryStore) ReplaceAll(ctx context.Context, records []ScoredRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make([]ScoredRecord, len(records))
	copy(m.records, records)
	m.byID = make(map[string]int, len(records))
	for i := range m.records {
		m.byID[m.records[i].ID] = i
	}
	return nil
}

func (m *MemoryStore) List(ctx context.Context, category Category, limit int) ([]ScoredRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ScoredRecord, 0, limit)
	for i := range m.records {
		if category != "" && m.records[i].RiskCategory != category {
			continue
		}
		result = append(result, m.records[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*ScoredRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	cp := m.records[i]
	return &cp, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}
