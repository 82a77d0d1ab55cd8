package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/features/items"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

const password = "hunter2"

func newService(t *testing.T) (*Service, *store.Repository) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	repo := store.NewRepository(store.NewMemoryStore())
	rng := rewards.NewSource(42)
	ledger := economy.NewService(repo, rng, "BANK")
	itemSvc := items.NewService(repo, store.NewCatalog(nil), rng,
		ledger, items.NewRecordRoleGranter(repo), 500)

	return NewService(ledger, itemSvc, string(hash), []int64{1}), repo
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)

	assert.ErrorIs(t, svc.Login(2, password), ErrNotAdmin, "не в белом списке")
	assert.False(t, svc.HasSession(2))

	assert.ErrorIs(t, svc.Login(1, "wrong"), ErrWrongPassword)
	assert.False(t, svc.HasSession(1))

	require.NoError(t, svc.Login(1, password))
	assert.True(t, svc.HasSession(1))
	require.NoError(t, svc.Authorize(1))
}

func TestLoginThrottlesAfterThreeFailures(t *testing.T) {
	svc, _ := newService(t)

	for i := 0; i < maxAttempts; i++ {
		assert.ErrorIs(t, svc.Login(1, "wrong"), ErrWrongPassword)
	}
	// Даже правильный пароль после трёх неудач не принимается.
	assert.ErrorIs(t, svc.Login(1, password), ErrTooManyAttempts)

	// Через час окно попыток очищается.
	svc.now = func() time.Time { return time.Now().Add(attemptWindow + time.Minute) }
	require.NoError(t, svc.Login(1, password))
}

func TestSessionExpires(t *testing.T) {
	svc, _ := newService(t)
	require.NoError(t, svc.Login(1, password))

	svc.now = func() time.Time { return time.Now().Add(SessionTTL + time.Minute) }
	assert.False(t, svc.HasSession(1))
	assert.ErrorIs(t, svc.Authorize(1), ErrNoSession)
}

func TestLogout(t *testing.T) {
	svc, _ := newService(t)
	require.NoError(t, svc.Login(1, password))
	svc.Logout(1)
	assert.ErrorIs(t, svc.Authorize(1), ErrNoSession)
}

func TestGiveCoinsRequiresSession(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.GiveCoins(ctx, 1, "u1", 1000)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = svc.GiveCoins(ctx, 2, "u1", 1000)
	assert.ErrorIs(t, err, ErrNotAdmin)

	require.NoError(t, svc.Login(1, password))
	rec, err := svc.GiveCoins(ctx, 1, "u1", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), rec.Money, "стартовые 100 + 1000 без буста")

	// Отрицательная сумма списывает, но не уводит баланс в минус.
	rec, err = svc.GiveCoins(ctx, 1, "u1", -5000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Money)

	stored, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Money)
}

func TestGiveCoinsIgnoresBoost(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, "u1", func(rec *store.UserRecord) error {
		rec.MoneyBoost = 2.0
		return nil
	}))
	require.NoError(t, svc.Login(1, password))

	rec, err := svc.GiveCoins(ctx, 1, "u1", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), rec.Money, "админ-начисление идёт мимо множителя")
}

func TestGiveItem(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	_, err := svc.GiveItem(ctx, 1, "u1", "Rusty Sword", 2)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, svc.Login(1, password))
	total, err := svc.GiveItem(ctx, 1, "u1", "Rusty Sword", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	rec, err := repo.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Inventory["Rusty Sword"])
}
