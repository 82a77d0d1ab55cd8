// store.go — контракт хранилища и файловый (канонический) бэкенд.
//
// Контракт нарочно грубый: LoadAll отдаёт всю таблицу, SaveAll перезаписывает
// её целиком. Два конкурирующих SaveAll дают last-write-wins на уровне всего
// файла — сериализацией циклов чтение-изменение-запись занимается Repository.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store — бэкенд таблицы пользователей. Реализации: файл (json),
// PostgreSQL и память (для тестов).
type Store interface {
	LoadAll(ctx context.Context) (UserTable, error)
	SaveAll(ctx context.Context, table UserTable) error
}

// JSONFileStore хранит таблицу в одном JSON-файле (объект, ключ — user id).
// Каждый LoadAll читает файл заново, каждый SaveAll переписывает его целиком.
type JSONFileStore struct {
	path string
}

// NewJSONFileStore создаёт файловый бэкенд. Файл может не существовать —
// тогда LoadAll вернёт пустую таблицу.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

// LoadAll читает таблицу с диска.
func (s *JSONFileStore) LoadAll(_ context.Context) (UserTable, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return UserTable{}, nil
		}
		return nil, fmt.Errorf("чтение %s: %w", s.path, err)
	}

	table := UserTable{}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", s.path, err)
	}
	return table, nil
}

// SaveAll переписывает файл целиком. Пишем во временный файл и переименовываем,
// чтобы упавшая запись не оставила таблицу наполовину записанной.
func (s *JSONFileStore) SaveAll(_ context.Context, table UserTable) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация таблицы: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("создание каталога для %s: %w", s.path, err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("запись %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("переименование %s: %w", tmp, err)
	}
	return nil
}

// Path возвращает путь к файлу (нужен задаче ежедневного бэкапа).
func (s *JSONFileStore) Path() string {
	return s.path
}
