package economy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/economy-bot/internal/common"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

const treasury = "BANK"

func newService(t *testing.T) (*Service, *store.Repository) {
	t.Helper()
	repo := store.NewRepository(store.NewMemoryStore())
	return NewService(repo, rewards.NewSource(42), treasury), repo
}

func record(t *testing.T, repo *store.Repository, userID string) *store.UserRecord {
	t.Helper()
	rec, err := repo.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	return rec
}

func TestAddMoneyAppliesBoost(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	credited, err := svc.AddMoney(ctx, "u1", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), credited, "нейтральный множитель 1.0")

	require.NoError(t, repo.Update(ctx, "u1", func(rec *store.UserRecord) error {
		rec.MoneyBoost = 1.5
		return nil
	}))
	credited, err = svc.AddMoney(ctx, "u1", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(150), credited)

	rec := record(t, repo, "u1")
	assert.Equal(t, int64(100+100+150), rec.Money)
}

func TestAddMoneyNegativeClampsAtZero(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.AddMoney(ctx, "u1", -1000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), record(t, repo, "u1").Money)
}

func TestSpendMoneyRoutesToTreasury(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.SpendMoney(ctx, "u1", 60))

	assert.Equal(t, int64(40), record(t, repo, "u1").Money)
	assert.Equal(t, int64(60), record(t, repo, treasury).Bank)
}

func TestSpendMoneyInsufficient(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	err := svc.SpendMoney(ctx, "u1", 500)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	// Неудачное списание ничего не меняет.
	assert.Equal(t, int64(100), record(t, repo, "u1").Money)
	assert.Equal(t, int64(0), record(t, repo, treasury).Bank)
}

func TestSpendMoneyByTreasuryItself(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.SpendMoney(ctx, treasury, 50))

	rec := record(t, repo, treasury)
	assert.Equal(t, int64(50), rec.Money)
	assert.Equal(t, int64(0), rec.Bank, "казна сама себе в банк не зачисляет")
}

func TestGive(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Give(ctx, "u1", "u1", 10), common.ErrSelfTransfer)
	assert.ErrorIs(t, svc.Give(ctx, "u1", "u2", 0), common.ErrInvalidAmount)
	assert.ErrorIs(t, svc.Give(ctx, "u1", "u2", -5), common.ErrInvalidAmount)
	assert.ErrorIs(t, svc.Give(ctx, "u1", "u2", 1000), common.ErrInsufficientBalance)

	require.NoError(t, svc.Give(ctx, "u1", "u2", 30))
	assert.Equal(t, int64(70), record(t, repo, "u1").Money)
	assert.Equal(t, int64(130), record(t, repo, "u2").Money)
}

func TestDepositWithdraw(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Deposit(ctx, "u1", 80))
	rec := record(t, repo, "u1")
	assert.Equal(t, int64(20), rec.Money)
	assert.Equal(t, int64(80), rec.Bank)

	assert.ErrorIs(t, svc.Withdraw(ctx, "u1", 81), common.ErrInsufficientBank)

	require.NoError(t, svc.Withdraw(ctx, "u1", 80))
	rec = record(t, repo, "u1")
	assert.Equal(t, int64(100), rec.Money)
	assert.Equal(t, int64(0), rec.Bank)
}

func TestDaily(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	res, err := svc.Daily(ctx, "u1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Coins, int64(dailyMinCoins))
	assert.LessOrEqual(t, res.Coins, int64(dailyMaxCoins))
	assert.Equal(t, int64(dailyXP), res.XP)

	rec := record(t, repo, "u1")
	assert.Equal(t, int64(dailyXP), rec.XP)
	assert.Equal(t, now.Unix(), rec.LastDaily)

	// Сразу повторно — кулдаун.
	res, err = svc.Daily(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrOnCooldown)
	assert.Greater(t, res.Remaining, time.Duration(0))

	// Через 24 часа — снова доступно.
	now = now.Add(DailyCooldown)
	_, err = svc.Daily(ctx, "u1")
	assert.NoError(t, err)
}

func TestLeaderboard(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	seed := func(id string, money, bank int64, level int) {
		require.NoError(t, repo.Update(ctx, id, func(rec *store.UserRecord) error {
			rec.Money = money
			rec.Bank = bank
			rec.Level = level
			return nil
		}))
	}
	seed("a", 500, 0, 3)
	seed("b", 100, 900, 7)
	seed("c", 300, 100, 1)
	seed(treasury, 0, 1_000_000, 1)

	board, err := svc.Leaderboard(ctx, BoardMoney, 10)
	require.NoError(t, err)
	require.Len(t, board, 3, "казна исключена из рейтинга")
	assert.Equal(t, "a", board[0].UserID)

	board, err = svc.Leaderboard(ctx, BoardTotal, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "b", board[0].UserID)
	assert.Equal(t, int64(1000), board[0].Score)

	board, err = svc.Leaderboard(ctx, BoardLevel, 10)
	require.NoError(t, err)
	assert.Equal(t, "b", board[0].UserID)
	assert.Equal(t, int64(7), board[0].Score)
}
