package lottery

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/economy-bot/internal/common"
	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

func newService(t *testing.T) (*Service, *store.Repository, *store.LotteryHistory) {
	t.Helper()
	repo := store.NewRepository(store.NewMemoryStore())
	rng := rewards.NewSource(1)
	history := store.NewLotteryHistory(filepath.Join(t.TempDir(), "lottery_wins.json"))
	return NewService(rng, economy.NewService(repo, rng, "BANK"), history), repo, history
}

func TestValidateGuesses(t *testing.T) {
	assert.NoError(t, ValidateGuesses([]int{1, 50, 99, 100}))
	assert.ErrorIs(t, ValidateGuesses([]int{0, 2, 3, 4}), common.ErrInvalidChoice)
	assert.ErrorIs(t, ValidateGuesses([]int{1, 2, 3, 101}), common.ErrInvalidChoice)
	assert.ErrorIs(t, ValidateGuesses([]int{1, 2, 3}), common.ErrInvalidChoice)
}

func TestPayoutTable(t *testing.T) {
	assert.Equal(t, int64(0), Payout(0))
	assert.Equal(t, int64(2_500), Payout(1))
	assert.Equal(t, int64(10_000), Payout(2))
	assert.Equal(t, int64(200_000), Payout(3))
	assert.Equal(t, int64(1_000_000), Payout(4))
}

func TestJackpotPaysMillion(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	guesses := []int{12, 34, 56, 78}
	res, err := svc.settle(ctx, "u1", guesses, []int{12, 34, 56, 78})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Matches)
	assert.Equal(t, int64(1_000_000), res.Won)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100+1_000_000), rec.Money)
}

func TestNoMatchPaysNothing(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	res, err := svc.settle(ctx, "u1", []int{1, 2, 3, 4}, []int{50, 60, 70, 80})
	require.NoError(t, err)
	assert.Zero(t, res.Matches)
	assert.Zero(t, res.Won)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.Money)
}

func TestHistoryRecordedRegardlessOfOutcome(t *testing.T) {
	svc, _, history := newService(t)
	ctx := context.Background()

	_, err := svc.settle(ctx, "u1", []int{1, 2, 3, 4}, []int{50, 60, 70, 80})
	require.NoError(t, err)
	_, err = svc.settle(ctx, "u1", []int{50, 2, 3, 4}, []int{50, 60, 70, 85})
	require.NoError(t, err)

	counts, err := history.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["50"])
	assert.Equal(t, int64(2), counts["60"])
	assert.Equal(t, int64(1), counts["80"])
	assert.Equal(t, int64(1), counts["85"])
}

func TestPlayDrawsInRange(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		res, err := svc.Play(ctx, "u1", []int{1, 2, 3, 4})
		require.NoError(t, err)
		require.Len(t, res.Drawn, DrawSize)
		for _, n := range res.Drawn {
			assert.GreaterOrEqual(t, n, NumberMin)
			assert.LessOrEqual(t, n, NumberMax)
		}
	}
}
