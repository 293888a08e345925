package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/Yash3561/Nexus/pkg/storage"
	"github.com/Yash3561/Nexus/pkg/storage/inmemory"
)

// ErrMockStorage is returned by MockStorageDriver when a failure is forced.
var ErrMockStorage = errors.New("mock storage failure")

// MockStorageDriver is an in-memory storage driver that counts writes and
// can be told to fail.
type MockStorageDriver struct {
	*inmemory.Driver

	mu sync.Mutex

	// Puts counts successful Put calls per kind.
	Puts map[storage.Kind]int

	// FailGet causes Get to return ErrMockStorage.
	FailGet bool

	// FailPut causes Put to return ErrMockStorage.
	FailPut bool
}

// NewMockStorageDriver creates a new mock storage driver.
func NewMockStorageDriver() *MockStorageDriver {
	return &MockStorageDriver{
		Driver: inmemory.NewDriver(),
		Puts:   map[storage.Kind]int{},
	}
}

func (m *MockStorageDriver) Get(ctx context.Context, kind storage.Kind, id string) ([]byte, error) {
	m.mu.Lock()
	fail := m.FailGet
	m.mu.Unlock()

	if fail {
		return nil, ErrMockStorage
	}
	return m.Driver.Get(ctx, kind, id)
}

func (m *MockStorageDriver) Put(ctx context.Context, kind storage.Kind, id string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPut {
		return ErrMockStorage
	}
	m.Puts[kind]++
	return m.Driver.Put(ctx, kind, id, body)
}

// PutCount returns the number of successful writes for kind.
func (m *MockStorageDriver) PutCount(kind storage.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Puts[kind]
}
