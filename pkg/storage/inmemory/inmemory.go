// Package inmemory provides a map-backed storage driver. Records do not
// survive the process; it is used by tests and the "memory" provider.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/Yash3561/Nexus/pkg/storage"
)

type key struct {
	kind storage.Kind
	id   string
}

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of records
	mu sync.RWMutex

	records map[key][]byte
}

// NewDriver creates a new in-memory storer.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[key][]byte),
	}
}

// Get retrieves a copy of the record body.
func (s *Driver) Get(_ context.Context, kind storage.Kind, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.records[key{kind, id}]
	if !ok {
		return nil, storage.NotFoundError{Kind: kind, ID: id}
	}

	return slices.Clone(body), nil
}

// Put stores a copy of body.
func (s *Driver) Put(_ context.Context, kind storage.Kind, id string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key{kind, id}] = slices.Clone(body)
	return nil
}

// Delete removes a record.
func (s *Driver) Delete(_ context.Context, kind storage.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key{kind, id})
	return nil
}

// List returns the sorted ids of a kind.
func (s *Driver) List(_ context.Context, kind storage.Kind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	for k := range s.records {
		if k.kind == kind {
			ids = append(ids, k.id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Close is a no-op.
func (s *Driver) Close() error {
	return nil
}
