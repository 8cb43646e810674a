package timings

import (
	"context"
	"sync"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

// Store holds the single cached timings record. Load returns nil, nil when
// nothing is stored. Save replaces the whole record.
type Store interface {
	Load(ctx context.Context) (*model.StoredTimings, error)
	Save(ctx context.Context, st model.StoredTimings) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the record in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	record *model.StoredTimings
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*model.StoredTimings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.record == nil {
		return nil, nil
	}
	cp := *m.record
	cp.Items = m.record.Items.Clone()
	return &cp, nil
}

func (m *MemoryStore) Save(ctx context.Context, st model.StoredTimings) error {
	st.Items = st.Items.Clone()
	m.mu.Lock()
	m.record = &st
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.record = nil
	m.mu.Unlock()
	return nil
}
