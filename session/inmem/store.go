// Package inmem provides an in-memory session.Store for tests and
// single-process demos. It is not durable across process restarts.
package inmem

import (
	"context"
	"sync"

	"github.com/agentscope-go/shutdown/session"
)

// Store is a concurrency-safe, in-memory implementation of session.Store.
type Store struct {
	mu       sync.RWMutex
	records  map[string]map[string][]byte
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{records: make(map[string]map[string][]byte)}
}

// Save implements session.Store.
func (s *Store) Save(_ context.Context, key, field string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		rec = make(map[string][]byte)
		s.records[key] = rec
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	rec[field] = cp
	return nil
}

// Get implements session.Store.
func (s *Store) Get(_ context.Context, key, field string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, session.ErrNotFound
	}
	v, ok := rec[field]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Delete implements session.Store.
func (s *Store) Delete(_ context.Context, key, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	delete(rec, field)
	return nil
}

// Exists implements session.Store.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[key]
	return ok, nil
}
