package repository

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

var (
	_ domain.LocalStorage = (*MemoryLocalStorage)(nil)
	_ domain.LocalStorage = (*FileLocalStorage)(nil)
	_ domain.LocalStorage = (*RedisLocalStorage)(nil)
	_ domain.LocalStorage = (*PostgresLocalStorage)(nil)
)

// MemoryLocalStorage keeps entries in-process. Used for tests and ephemeral runs.
type MemoryLocalStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryLocalStorage creates an empty in-memory storage
func NewMemoryLocalStorage() *MemoryLocalStorage {
	return &MemoryLocalStorage{items: make(map[string]string)}
}

func (m *MemoryLocalStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryLocalStorage) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryLocalStorage) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Len reports the number of stored entries
func (m *MemoryLocalStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func defaultLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
