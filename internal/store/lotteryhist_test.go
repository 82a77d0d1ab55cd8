package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotteryHistoryEmptyFile(t *testing.T) {
	h := NewLotteryHistory(filepath.Join(t.TempDir(), "lottery.json"))
	counts, err := h.Counts()
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestLotteryHistoryRecordAndTop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "lottery.json")
	h := NewLotteryHistory(path)

	require.NoError(t, h.Record([]int{7, 13, 42, 77}))
	require.NoError(t, h.Record([]int{7, 13, 99, 100}))
	require.NoError(t, h.Record([]int{7}))

	counts, err := h.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts["7"])
	assert.Equal(t, int64(2), counts["13"])
	assert.Equal(t, int64(1), counts["42"])

	top, err := h.Top(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"7: 3", "13: 2"}, top)

	// Счётчики переживают новый экземпляр поверх того же файла.
	counts, err = NewLotteryHistory(path).Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts["7"])
}

func TestLotteryHistoryTopMoreThanStored(t *testing.T) {
	h := NewLotteryHistory(filepath.Join(t.TempDir(), "lottery.json"))
	require.NoError(t, h.Record([]int{1}))

	top, err := h.Top(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"1: 1"}, top)
}
