package storage

import (
	"context"
	"sync"
)

// InMemory keeps every collection in process memory. It is the default
// backend for development and tests.
type InMemory struct {
	mu          sync.RWMutex
	collections map[string]Records
}

func NewInMemory() *InMemory {
	return &InMemory{collections: make(map[string]Records)}
}

func (s *InMemory) Load(_ context.Context, collection string) (Records, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.collections[collection]
	if !ok {
		return Records{}, nil
	}
	return records.Clone(), nil
}

func (s *InMemory) Save(_ context.Context, collection string, records Records) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = records.Clone()
	return nil
}
