package blob

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jmorales/gastosbot/internal/common"
)

// MockStore is an in-memory service.BlobStore for testing.
type MockStore struct {
	StoreErr  error
	DeleteErr error
	blobs     map[string][]byte
	nextID    int
	mu        sync.Mutex
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{blobs: make(map[string][]byte)}
}

// Store implements service.BlobStore.
func (m *MockStore) Store(_ context.Context, userID int64, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StoreErr != nil {
		return "", m.StoreErr
	}

	m.nextID++
	ref := "mock://" + strconv.FormatInt(userID, 10) + "/" + strconv.Itoa(m.nextID)
	m.blobs[ref] = append([]byte(nil), data...)
	return ref, nil
}

// Delete implements service.BlobStore.
func (m *MockStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	if _, ok := m.blobs[ref]; !ok {
		return fmt.Errorf("%w: %s", common.ErrNotFound, ref)
	}
	delete(m.blobs, ref)
	return nil
}

// Get returns a stored blob's bytes.
func (m *MockStore) Get(ref string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.blobs[ref]
	return data, ok
}

// Len returns how many blobs are stored.
func (m *MockStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
