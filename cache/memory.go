package cache

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It survives re-inits of the coordinator
// but not process restarts. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	payload []byte
	present bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.present {
		return nil, ErrNotFound
	}
	out := make([]byte, len(m.payload))
	copy(out, m.payload)
	return out, nil
}

func (m *Memory) Save(_ context.Context, payload []byte) error {
	next := make([]byte, len(payload))
	copy(next, payload)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.payload = next
	m.present = true
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.payload = nil
	m.present = false
	return nil
}
