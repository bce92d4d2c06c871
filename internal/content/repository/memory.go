package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qehclinic/portal-backend/internal/content"
)

// MemoryRepository is an in-memory Repository used in development mode and
// tests. Records keep insertion order per collection, matching the fetch
// order of the Mongo implementation.
type MemoryRepository struct {
	mu    sync.RWMutex
	colls map[string][]*content.Record
	seq   int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{colls: make(map[string][]*content.Record)}
}

func clone(r *content.Record) *content.Record {
	cp := *r
	if r.SortKey != nil {
		cp.SortKey = content.IntPtr(*r.SortKey)
	}
	return &cp
}

func (m *MemoryRepository) List(ctx context.Context, coll string, order Order) ([]*content.Record, error) {
	m.mu.RLock()
	list := make([]*content.Record, 0, len(m.colls[coll]))
	for _, r := range m.colls[coll] {
		list = append(list, clone(r))
	}
	m.mu.RUnlock()
	sortRecords(list, order)
	return list, nil
}

func (m *MemoryRepository) Get(ctx context.Context, coll, id string) (*content.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.colls[coll] {
		if r.ID == id {
			return clone(r), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) Create(ctx context.Context, coll string, r *content.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if r.ID == "" {
		m.seq++
		r.ID = fmt.Sprintf("mem-%d", m.seq)
	}
	if r.Date.IsZero() {
		r.Date = now
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	m.colls[coll] = append(m.colls[coll], clone(r))
	return r.ID, nil
}

func (m *MemoryRepository) Update(ctx context.Context, coll, id string, upd content.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.colls[coll] {
		if r.ID != id {
			continue
		}
		r.Title = upd.Title
		r.Body = upd.Body
		r.Category = upd.Category
		if upd.ImageURL != nil {
			r.ImageURL = *upd.ImageURL
		}
		if upd.ImagePath != nil {
			r.ImagePath = *upd.ImagePath
		}
		if upd.Referred != nil {
			r.Referred = *upd.Referred
		}
		r.UpdatedAt = time.Now()
		return nil
	}
	return ErrNotFound
}

func (m *MemoryRepository) Delete(ctx context.Context, coll, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.colls[coll]
	for i, r := range list {
		if r.ID == id {
			m.colls[coll] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryRepository) ReplaceOrder(ctx context.Context, coll string, batch []content.OrderedID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := make(map[string]*content.Record, len(m.colls[coll]))
	for _, r := range m.colls[coll] {
		byID[r.ID] = r
	}
	for _, o := range batch {
		r, ok := byID[o.ID]
		if !ok || r.Version != o.Version {
			return ErrVersionConflict
		}
	}
	now := time.Now()
	for _, o := range batch {
		r := byID[o.ID]
		r.SortKey = content.IntPtr(o.SortKey)
		r.Version++
		r.UpdatedAt = now
	}
	return nil
}
