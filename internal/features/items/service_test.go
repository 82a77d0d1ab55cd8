package items

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/economy-bot/internal/common"
	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

const treasury = "BANK"

func testCatalog() *store.Catalog {
	return store.NewCatalog(map[string]store.Item{
		"Rusty Spoon":         {Rarity: store.RarityCommon, Value: 10},
		"Wooden Shield":       {Rarity: store.RarityCommon, Value: 25},
		"Silver Dagger":       {Rarity: store.RarityUncommon, Value: 120},
		"Enchanted Bow":       {Rarity: store.RarityRare, Value: 900},
		"Dragon Scale":        {Rarity: store.RarityEpic, Value: 7500},
		"The One Ring":        {Rarity: store.RarityLegendary, Value: 1_000_000},
		"Galaxy Core":         {Rarity: store.RarityCosmic, Value: 500_000_000},
		"Fragment Of Reality": {Rarity: store.RarityNull, Value: 0},
		"Cursed Pebble":       {Rarity: store.RarityCommon, Value: 0},
	})
}

func newService(t *testing.T, seed int64) (*Service, *store.Repository) {
	t.Helper()
	repo := store.NewRepository(store.NewMemoryStore())
	rng := rewards.NewSource(seed)
	ledger := economy.NewService(repo, rng, treasury)
	granter := NewRecordRoleGranter(repo)
	return NewService(repo, testCatalog(), rng, ledger, granter, 500), repo
}

func setMoney(t *testing.T, repo *store.Repository, userID string, money int64) {
	t.Helper()
	require.NoError(t, repo.Update(context.Background(), userID, func(rec *store.UserRecord) error {
		rec.Money = money
		return nil
	}))
}

func TestAddRemoveItemKeepsQuantitiesPositive(t *testing.T) {
	svc, repo := newService(t, 1)
	ctx := context.Background()

	qty, err := svc.AddItem(ctx, "u1", "Rusty Spoon", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), qty)

	assert.ErrorIs(t, svc.RemoveItem(ctx, "u1", "Rusty Spoon", 3), common.ErrNotEnoughItems)

	require.NoError(t, svc.RemoveItem(ctx, "u1", "Rusty Spoon", 2))
	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	_, present := rec.Inventory["Rusty Spoon"]
	assert.False(t, present, "нулевое количество удаляет ключ")

	_, err = svc.AddItem(ctx, "u1", "Rusty Spoon", 0)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestRollChargesCostAndAddsItem(t *testing.T) {
	svc, repo := newService(t, 2)
	ctx := context.Background()
	setMoney(t, repo, "u1", 1000)

	res, err := svc.Roll(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Item)
	assert.Equal(t, int64(1), res.Quantity)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), rec.Money)
	assert.Equal(t, int64(1), rec.Inventory[res.Item])

	// Стоимость ролла осела в банке казны.
	bank, err := repo.GetOrCreate(ctx, treasury)
	require.NoError(t, err)
	assert.Equal(t, int64(500), bank.Bank)
}

func TestRollInsufficientFunds(t *testing.T) {
	svc, repo := newService(t, 3)
	ctx := context.Background()

	_, err := svc.Roll(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.Money, "неудачный ролл ничего не списывает")
	assert.Empty(t, rec.Inventory)
}

func TestRollRarityDistributionSane(t *testing.T) {
	svc, repo := newService(t, 4)
	ctx := context.Background()
	setMoney(t, repo, "u1", 10_000_000)

	counts := map[store.Rarity]int{}
	for i := 0; i < 2000; i++ {
		res, err := svc.Roll(ctx, "u1")
		require.NoError(t, err)
		counts[res.Rarity]++
	}

	// Базовые веса 60/30/9/1/0.5: common должен доминировать.
	assert.Greater(t, counts[store.RarityCommon], counts[store.RarityUncommon])
	assert.Greater(t, counts[store.RarityUncommon], counts[store.RarityRare])
	assert.Zero(t, counts[store.RarityCosmic], "космос без ультра-ролла не выпадает")
	assert.Zero(t, counts[store.RarityNull])
}

func TestSell(t *testing.T) {
	svc, repo := newService(t, 5)
	ctx := context.Background()

	_, err := svc.Sell(ctx, "u1", "Enchanted Bow")
	assert.ErrorIs(t, err, common.ErrItemNotFound)

	_, err = svc.AddItem(ctx, "u1", "Enchanted Bow", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", "Cursed Pebble", 1)
	require.NoError(t, err)

	_, err = svc.Sell(ctx, "u1", "Cursed Pebble")
	assert.ErrorIs(t, err, common.ErrItemWorthless)

	// Поиск без учёта регистра.
	res, err := svc.Sell(ctx, "u1", "enchanted bow")
	require.NoError(t, err)
	assert.Equal(t, "Enchanted Bow", res.Item)
	assert.Equal(t, int64(900), res.Credited)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), rec.Money)
	assert.NotContains(t, rec.Inventory, "Enchanted Bow")
}

func TestSellAll(t *testing.T) {
	svc, repo := newService(t, 6)
	ctx := context.Background()

	_, err := svc.SellAll(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrItemNotFound)

	_, err = svc.AddItem(ctx, "u1", "Rusty Spoon", 3)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", "Silver Dagger", 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", "Cursed Pebble", 1)
	require.NoError(t, err)

	res, err := svc.SellAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3*10+2*120), res.Total)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, rec.Inventory, "Cursed Pebble", "бесценные предметы не продаются")
	assert.NotContains(t, rec.Inventory, "Rusty Spoon")
	assert.NotContains(t, rec.Inventory, "Silver Dagger")
}

func TestInventoryPagination(t *testing.T) {
	svc, _ := newService(t, 7)
	ctx := context.Background()

	entries, pages, err := svc.InventoryPage(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Zero(t, pages)
	assert.Empty(t, entries)

	for _, name := range []string{"Rusty Spoon", "Wooden Shield", "Silver Dagger", "Enchanted Bow", "Dragon Scale"} {
		_, err := svc.AddItem(ctx, "u1", name, 1)
		require.NoError(t, err)
	}

	entries, pages, err = svc.InventoryPage(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	require.Len(t, entries, 5)
	assert.Equal(t, "Dragon Scale", entries[0].Name, "сортировка по цене по убыванию")
	assert.Equal(t, "Rusty Spoon", entries[4].Name)
}

func TestBuyRoleAndRefundOnFailure(t *testing.T) {
	svc, repo := newService(t, 8)
	ctx := context.Background()
	setMoney(t, repo, "u1", 20_000)

	res, err := svc.Buy(ctx, "u1", "premium")
	require.NoError(t, err)
	assert.Equal(t, "Premium", res.RoleName)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), rec.Money)
	assert.True(t, rec.HasRole("Premium"))

	// Повторная покупка: грант отказывает, деньги возвращаются.
	_, err = svc.Buy(ctx, "u1", "premium")
	assert.ErrorIs(t, err, common.ErrAlreadyOwned)

	rec, err = repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), rec.Money, "цена возвращена")
}

func TestBuyInstantBonuses(t *testing.T) {
	svc, repo := newService(t, 9)
	ctx := context.Background()
	setMoney(t, repo, "u1", 10_000)

	res, err := svc.Buy(ctx, "u1", "daily_coins")
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.Coins)

	res, err = svc.Buy(ctx, "u1", "xp_boost")
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.XP)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000-300+50-2_000), rec.Money)
	assert.Equal(t, int64(100), rec.XP)
	assert.Equal(t, 2, rec.Level)
}

func TestBuyUnknownItem(t *testing.T) {
	svc, _ := newService(t, 10)

	_, err := svc.Buy(context.Background(), "u1", "nonsense")
	assert.ErrorIs(t, err, common.ErrItemNotFound)
}

func TestBasicBoxDistribution(t *testing.T) {
	svc, _ := newService(t, 11)
	ctx := context.Background()

	box, ok := BoxByID("basic")
	require.True(t, ok)

	coins := 0
	itemDraws := 0
	for i := 0; i < 1000; i++ {
		reward, err := svc.OpenBox(ctx, "u1", box)
		require.NoError(t, err)
		if reward.Item != "" {
			itemDraws++
			assert.Contains(t, []store.Rarity{store.RarityCommon, store.RarityUncommon}, reward.Rarity,
				"базовый бокс даёт только common/uncommon")
		} else {
			coins++
			assert.GreaterOrEqual(t, reward.Coins, int64(100))
			assert.LessOrEqual(t, reward.Coins, int64(2000))
		}
	}

	// Заявленные 70/30 с запасом на дисперсию.
	assert.InDelta(t, 700, coins, 50)
	assert.InDelta(t, 300, itemDraws, 50)
}

func TestBoxEmptyPoolFallsBackToCoins(t *testing.T) {
	// Каталог без cosmic-предметов: космический бокс всегда даёт монеты.
	repo := store.NewRepository(store.NewMemoryStore())
	rng := rewards.NewSource(12)
	ledger := economy.NewService(repo, rng, treasury)
	catalog := store.NewCatalog(map[string]store.Item{
		"Rusty Spoon": {Rarity: store.RarityCommon, Value: 10},
	})
	svc := NewService(repo, catalog, rng, ledger, NewRecordRoleGranter(repo), 500)

	box, ok := BoxByID("cosmic")
	require.True(t, ok)

	for i := 0; i < 200; i++ {
		reward, err := svc.OpenBox(context.Background(), "u1", box)
		require.NoError(t, err)
		assert.Empty(t, reward.Item)
		assert.Greater(t, reward.Coins, int64(0))
	}
}

func TestBuyBoxChargesPrice(t *testing.T) {
	svc, repo := newService(t, 13)
	ctx := context.Background()

	_, err := svc.Buy(ctx, "u1", "basic")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	setMoney(t, repo, "u1", 10_000)
	res, err := svc.Buy(ctx, "u1", "basic")
	require.NoError(t, err)
	require.NotNil(t, res.Box)
	require.NotNil(t, res.BoxReward)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	if res.BoxReward.Item != "" {
		assert.Equal(t, int64(0), rec.Money)
		assert.Equal(t, int64(1), rec.Inventory[res.BoxReward.Item])
	} else {
		assert.Equal(t, res.BoxReward.Coins, rec.Money)
	}
}

var errGrantDenied = errors.New("grant denied")

type failingGranter struct{}

func (failingGranter) GrantRole(context.Context, string, string) error { return errGrantDenied }

func TestBuyRoleRefundsOnGranterError(t *testing.T) {
	repo := store.NewRepository(store.NewMemoryStore())
	rng := rewards.NewSource(14)
	ledger := economy.NewService(repo, rng, treasury)
	svc := NewService(repo, testCatalog(), rng, ledger, failingGranter{}, 500)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, "u1", func(rec *store.UserRecord) error {
		rec.Money = 5_000
		return nil
	}))

	_, err := svc.Buy(ctx, "u1", "premium")
	assert.ErrorIs(t, err, errGrantDenied)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), rec.Money, "деньги возвращены при отказе гранта")
	assert.False(t, rec.HasRole("Premium"))
}
