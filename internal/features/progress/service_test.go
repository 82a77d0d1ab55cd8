package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/economy-bot/internal/common"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

func newService(t *testing.T) (*Service, *store.Repository) {
	t.Helper()
	repo := store.NewRepository(store.NewMemoryStore())
	return NewService(repo, rewards.NewSource(7)), repo
}

func TestLevelFormula(t *testing.T) {
	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{10000, 11},
	}
	for _, c := range cases {
		assert.Equal(t, c.level, store.LevelFromXP(c.xp), "xp=%d", c.xp)
	}
}

func TestAddXPLevelsUp(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	level, leveled, err := svc.AddXP(ctx, "u1", 50)
	require.NoError(t, err)
	assert.Equal(t, 1, level)
	assert.False(t, leveled)

	level, leveled, err = svc.AddXP(ctx, "u1", 50)
	require.NoError(t, err)
	assert.Equal(t, 2, level)
	assert.True(t, leveled)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.XP)
}

func TestOnMessageRange(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, _, err := svc.OnMessage(ctx, "u1")
		require.NoError(t, err)
	}
	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rec.XP, int64(50*passiveXPMin))
	assert.LessOrEqual(t, rec.XP, int64(50*passiveXPMax))
}

func TestAchievementsLazyUnlock(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	statuses, newly, err := svc.Achievements(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, newly, "gambler открывается первым же просмотром")
	for _, st := range statuses {
		if st.ID == "gambler" {
			assert.True(t, st.Unlocked)
		} else {
			assert.False(t, st.Unlocked, st.ID)
		}
	}

	require.NoError(t, repo.Update(ctx, "u1", func(rec *store.UserRecord) error {
		rec.Money = 150_000
		rec.Level = 5
		return nil
	}))

	_, newly, err = svc.Achievements(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, newly, "first_coins + high_roller + level_5")

	// Повторный просмотр ничего нового не открывает.
	_, newly, err = svc.Achievements(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, newly)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, rec.HasAchievement("first_coins"))
	assert.True(t, rec.HasAchievement("high_roller"))
	assert.True(t, rec.HasAchievement("level_5"))
	assert.False(t, rec.HasAchievement("millionaire"))
}

func TestPrestigeCost(t *testing.T) {
	assert.Equal(t, int64(10_000_000), PrestigeCost(0))
	assert.Equal(t, int64(100_000_000), PrestigeCost(1))
	assert.Equal(t, int64(1_000_000_000), PrestigeCost(2))
}

func TestPrestige(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.Prestige(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	require.NoError(t, repo.Update(ctx, "u1", func(rec *store.UserRecord) error {
		rec.Money = 10_000_000
		rec.XP = 5000
		rec.Level = 8
		rec.Bank = 777
		rec.Inventory["sword"] = 3
		rec.Roles = []string{"vip"}
		return nil
	}))

	res, err := svc.Prestige(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewPrestige)
	assert.Equal(t, 20.0, res.NewLuck)
	assert.InDelta(t, 1.5, res.NewMoneyBoost, 1e-9)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, rec.Money)
	assert.Zero(t, rec.XP)
	assert.Equal(t, 1, rec.Level)
	assert.Empty(t, rec.Inventory)
	assert.Equal(t, int64(777), rec.Bank, "банк переживает престиж")
	assert.Equal(t, []string{"vip"}, rec.Roles, "роли переживают престиж")
	assert.Equal(t, 30.0, rec.TotalLuck(), "удача 20 + престиж 10")
}
