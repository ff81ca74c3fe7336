package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	collections map[string]map[string]Record
	mu          sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Record)}
}

// Get fetches one record, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Put writes a complete record under the given id.
func (s *MemoryStore) Put(ctx context.Context, collection, id string, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Record)
		s.collections[collection] = coll
	}
	coll[id] = record.Clone()
	return nil
}

// Update merges a patch into an existing record.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	merged := rec.Clone()
	for k, v := range patch {
		merged[k] = v
	}
	s.collections[collection][id] = merged
	return merged.Clone(), nil
}

// Delete removes a record, or ErrNotFound.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

// List returns every record in a collection.
func (s *MemoryStore) List(ctx context.Context, collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll := s.collections[collection]
	out := make([]Record, 0, len(coll))
	for _, rec := range coll {
		out = append(out, rec.Clone())
	}
	return out, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}
