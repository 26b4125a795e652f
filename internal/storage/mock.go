package storage

import (
	"fmt"
	"sync"
)

// MockStorage keeps the stored values in memory.
type MockStorage struct {
	mutex    sync.Mutex
	Elements map[Key]interface{}
}

// NewMockStorage creates a new in memory storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{Elements: make(map[Key]interface{})}
}

// Store keeps the value.
func (m *MockStorage) Store(k Key, value interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Elements[k] = value
	return nil
}

// Load returns whether the key was stored, the value is not decoded.
func (m *MockStorage) Load(k Key, value interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.Elements[k]; !ok {
		return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
	}
	return nil
}
