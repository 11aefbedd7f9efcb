package store

import (
	"context"
	"sync"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
)

// MemoryStore is an in-process RecordStore with the same key discipline as
// the Redis store. Used by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.Submission
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]model.Submission),
	}
}

func (s *MemoryStore) Save(_ context.Context, rec model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[Key(rec.ID)] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[Key(id)]
	if !ok {
		return model.Submission{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.Submission, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	return records, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, Key(id))
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Len reports how many records are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
