package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileStoreMissingFile(t *testing.T) {
	s := NewJSONFileStore(filepath.Join(t.TempDir(), "users.json"))
	table, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, table, "отсутствующий файл — пустая таблица")
}

func TestJSONFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "users.json")
	s := NewJSONFileStore(path)
	ctx := context.Background()

	rec := NewUserRecord()
	rec.Money = 12345
	rec.Inventory["Excalibur"] = 2
	rec.Achievements = []string{"first_coins"}
	require.NoError(t, s.SaveAll(ctx, UserTable{"111": rec}))

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Contains(t, loaded, "111")
	assert.Equal(t, rec, loaded["111"])

	// Повторное сохранение того же состояния не меняет файл.
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveAll(ctx, loaded))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestJSONFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewJSONFileStore(path).LoadAll(context.Background())
	assert.Error(t, err)
}

func TestMemoryStoreIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	table := UserTable{"u1": NewUserRecord()}
	require.NoError(t, s.SaveAll(ctx, table))

	// Мутация сохранённой и загруженной таблиц не задевает хранилище.
	table["u1"].Money = 1
	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), loaded["u1"].Money)

	loaded["u1"].Money = 2
	again, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again["u1"].Money)
}
