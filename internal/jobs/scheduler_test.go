package jobs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/economy-bot/internal/store"
)

func TestBackupWritesSnapshots(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo := store.NewRepository(store.NewMemoryStore())
	require.NoError(t, repo.Update(ctx, "u1", func(rec *store.UserRecord) error {
		rec.Money = 777
		return nil
	}))

	history := store.NewLotteryHistory(filepath.Join(dir, "lottery.json"))
	require.NoError(t, history.Record([]int{1, 2, 3, 4}))

	s := NewScheduler(repo, history, filepath.Join(dir, "backups"))
	require.NoError(t, s.Backup(ctx))

	users, err := filepath.Glob(filepath.Join(dir, "backups", "users_*.json"))
	require.NoError(t, err)
	require.Len(t, users, 1)
	lottery, err := filepath.Glob(filepath.Join(dir, "backups", "lottery_*.json"))
	require.NoError(t, err)
	require.Len(t, lottery, 1)

	data, err := os.ReadFile(users[0])
	require.NoError(t, err)
	var table store.UserTable
	require.NoError(t, json.Unmarshal(data, &table))
	require.Contains(t, table, "u1")
	assert.Equal(t, int64(777), table["u1"].Money)
}

func TestStartRejectsBadCron(t *testing.T) {
	dir := t.TempDir()
	repo := store.NewRepository(store.NewMemoryStore())
	history := store.NewLotteryHistory(filepath.Join(dir, "lottery.json"))

	s := NewScheduler(repo, history, dir)
	assert.Error(t, s.Start(context.Background(), "not a cron"))
}
