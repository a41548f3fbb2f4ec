package mocks

import (
	"context"
	"sync"
)

// MockBackend is an in-memory storage.Backend that records calls and can be
// told to fail.
type MockBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string // namespace -> key -> value

	// For tracking calls in tests
	GetCalls    []GetCall
	SetCalls    []SetCall
	DeleteCalls []DeleteCall

	// Errors to return, if set
	GetErr    error
	SetErr    error
	DeleteErr error
	PingErr   error
}

// GetCall records parameters passed to Get
type GetCall struct {
	Namespace string
	Key       string
}

// SetCall records parameters passed to Set
type SetCall struct {
	Namespace string
	Key       string
	Value     string
}

// DeleteCall records parameters passed to Delete
type DeleteCall struct {
	Namespace string
	Key       string
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		data:        make(map[string]map[string]string),
		GetCalls:    make([]GetCall, 0),
		SetCalls:    make([]SetCall, 0),
		DeleteCalls: make([]DeleteCall, 0),
	}
}

func (m *MockBackend) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, GetCall{Namespace: namespace, Key: key})
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	value, ok := m.data[namespace][key]
	return value, ok, nil
}

func (m *MockBackend) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{Namespace: namespace, Key: key, Value: value})
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]string)
	}
	m.data[namespace][key] = value
	return nil
}

func (m *MockBackend) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, DeleteCall{Namespace: namespace, Key: key})
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data[namespace], key)
	return nil
}

func (m *MockBackend) Ping(context.Context) error {
	return m.PingErr
}

func (m *MockBackend) Close() error {
	return nil
}

// Seed stores a value without recording a call.
func (m *MockBackend) Seed(namespace, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]string)
	}
	m.data[namespace][key] = value
}

// Value returns a stored value without recording a call.
func (m *MockBackend) Value(namespace, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[namespace][key]
	return value, ok
}

// Sets returns a copy of the recorded Set calls.
func (m *MockBackend) Sets() []SetCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]SetCall(nil), m.SetCalls...)
}

// Reset clears all data and recorded calls.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]map[string]string)
	m.GetCalls = make([]GetCall, 0)
	m.SetCalls = make([]SetCall, 0)
	m.DeleteCalls = make([]DeleteCall, 0)
}
