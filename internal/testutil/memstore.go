package testutil

import (
	"context"
	"sync"

	"github.com/cinnalovers/secgruposet/internal/domain/models"
)

// MemStore is an in-memory GRUPOSET store with the same error contract as
// the real adapters. It counts calls so tests can assert which store
// operations ran. Set Err to fail every call, PanicMsg to panic.
type MemStore struct {
	mu          sync.Mutex
	Docs        []models.GrupoSet
	ExistsCalls int
	Calls       int
	Err         error
	PanicMsg    string
}

func (m *MemStore) enter() error {
	m.Calls++
	if m.PanicMsg != "" {
		panic(m.PanicMsg)
	}
	return m.Err
}

func (m *MemStore) index(k models.Key) int {
	for i, d := range m.Docs {
		if d.Key() == k {
			return i
		}
	}
	return -1
}

func (m *MemStore) Read(_ context.Context, f models.Filter) ([]models.GrupoSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	out := []models.GrupoSet{}
	for _, d := range m.Docs {
		if f.Matches(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemStore) Exists(_ context.Context, k models.Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExistsCalls++
	if err := m.enter(); err != nil {
		return false, err
	}
	return m.index(k) >= 0, nil
}

func (m *MemStore) Create(_ context.Context, docs []models.GrupoSet) ([]models.GrupoSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	for _, d := range docs {
		if m.index(d.Key()) >= 0 {
			return nil, models.ErrDuplicateKey
		}
		m.Docs = append(m.Docs, d)
	}
	return docs, nil
}

func (m *MemStore) Update(_ context.Context, k models.Key, c models.Changes) (models.GrupoSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return models.GrupoSet{}, err
	}
	i := m.index(k)
	if i < 0 {
		return models.GrupoSet{}, models.ErrNotFound
	}
	next := c.Apply(m.Docs[i])
	if j := m.index(next.Key()); j >= 0 && j != i {
		return models.GrupoSet{}, models.ErrDuplicateKey
	}
	m.Docs[i] = next
	return next, nil
}

func (m *MemStore) SoftDelete(_ context.Context, k models.Key, p models.SoftDeletePolicy, stamp models.ModStamp) (models.GrupoSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return models.GrupoSet{}, err
	}
	i := m.index(k)
	if i < 0 {
		return models.GrupoSet{}, models.ErrNotFound
	}
	m.Docs[i] = p.SoftDelete(m.Docs[i], stamp)
	return m.Docs[i], nil
}

func (m *MemStore) HardDelete(_ context.Context, k models.Key) (models.GrupoSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return models.GrupoSet{}, err
	}
	i := m.index(k)
	if i < 0 {
		return models.GrupoSet{}, models.ErrNotFound
	}
	g := m.Docs[i]
	m.Docs = append(m.Docs[:i], m.Docs[i+1:]...)
	return g, nil
}

func (m *MemStore) Ping(context.Context) error {
	return m.Err
}

// Snapshot returns a copy of the stored records.
func (m *MemStore) Snapshot() []models.GrupoSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.GrupoSet, len(m.Docs))
	copy(out, m.Docs)
	return out
}
