// memory.go — хранилище в памяти. Используется тестами и как бэкенд
// по умолчанию при STORAGE_BACKEND=memory (данные живут до рестарта).
package store

import (
	"context"
	"sync"
)

// MemoryStore держит таблицу в памяти. LoadAll/SaveAll копируют таблицу
// целиком, как и файловый бэкенд, чтобы семантика не отличалась.
type MemoryStore struct {
	mu    sync.Mutex
	table UserTable
}

// NewMemoryStore создаёт пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{table: UserTable{}}
}

// LoadAll возвращает копию таблицы.
func (s *MemoryStore) LoadAll(_ context.Context) (UserTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone(), nil
}

// SaveAll заменяет таблицу целиком.
func (s *MemoryStore) SaveAll(_ context.Context, table UserTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table.Clone()
	return nil
}
