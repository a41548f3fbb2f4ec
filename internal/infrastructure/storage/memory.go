package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps everything in process memory. Data is lost on restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string // namespace -> key -> value
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string]map[string]string),
	}
}

func (m *MemoryBackend) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data[namespace] == nil {
		return "", false, nil
	}
	value, ok := m.data[namespace][key]
	return value, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]string)
	}
	m.data[namespace][key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[namespace] != nil {
		delete(m.data[namespace], key)
		if len(m.data[namespace]) == 0 {
			delete(m.data, namespace)
		}
	}
	return nil
}

// Namespaces returns the number of namespaces holding at least one key.
func (m *MemoryBackend) Namespaces() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }
