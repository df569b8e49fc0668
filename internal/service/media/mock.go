package media

import (
	"context"
	"io"
	"sync"
)

// MockStore keeps uploads in memory for tests.
type MockStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	BaseURL string
	Error   error
}

// NewMockStore creates an empty store serving URLs from https://media.test/.
func NewMockStore() *MockStore {
	return &MockStore{
		objects: make(map[string][]byte),
		BaseURL: "https://media.test/",
	}
}

func (m *MockStore) Upload(ctx context.Context, folder string, r io.Reader) (*Object, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	p, err := prepare(folder, r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(p.body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[p.name] = data

	return &Object{
		Name:        p.name,
		URL:         m.BaseURL + p.name,
		ContentType: p.contentType,
		Size:        int64(len(data)),
	}, nil
}

// Object returns the stored bytes for name.
func (m *MockStore) Object(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[name]
	return b, ok
}

// Len reports the number of stored objects.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Compile-time interface check
var _ Store = (*MockStore)(nil)
