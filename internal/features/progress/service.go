// Package progress — опыт, уровни, ачивки и престиж.
package progress

import (
	"context"
	"math"

	"serotonyl.ru/economy-bot/internal/common"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

// Пассивный опыт за обычное сообщение в чате.
const (
	passiveXPMin = 1
	passiveXPMax = 5
)

// Базовая стоимость престижа; каждый следующий уровень в 10 раз дороже.
const prestigeBaseCost int64 = 10_000_000

// Achievement — описание ачивки и её условие.
type Achievement struct {
	ID    string
	Title string
	Check func(rec *store.UserRecord) bool
}

// Ачивки проверяются лениво — при просмотре списка.
var achievements = []Achievement{
	{ID: "first_coins", Title: "💰 First Coins — earn your first 1,000 coins", Check: func(r *store.UserRecord) bool {
		return r.Money >= 1_000
	}},
	{ID: "high_roller", Title: "🎰 High Roller — accumulate 10,000 coins", Check: func(r *store.UserRecord) bool {
		return r.Money >= 10_000
	}},
	{ID: "millionaire", Title: "💎 Millionaire — reach 1,000,000 coins", Check: func(r *store.UserRecord) bool {
		return r.NetWorth() >= 1_000_000
	}},
	{ID: "level_5", Title: "⭐ Rising Star — reach level 5", Check: func(r *store.UserRecord) bool {
		return r.Level >= 5
	}},
	{ID: "level_10", Title: "🌟 Experienced — reach level 10", Check: func(r *store.UserRecord) bool {
		return r.Level >= 10
	}},
	// Выдаётся первым же просмотром, как в историческом боте.
	{ID: "gambler", Title: "🎲 Gambler — use any gambling command", Check: func(r *store.UserRecord) bool {
		return true
	}},
}

// Service — операции прогрессии.
type Service struct {
	repo *store.Repository
	rng  *rewards.Source
}

// NewService создаёт сервис прогрессии.
func NewService(repo *store.Repository, rng *rewards.Source) *Service {
	return &Service{repo: repo, rng: rng}
}

// AddXP начисляет указанный опыт. Возвращает новый уровень и признак
// его роста.
func (s *Service) AddXP(ctx context.Context, userID string, amount int64) (int, bool, error) {
	var level int
	var leveled bool
	err := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		leveled = rec.AddXP(amount)
		level = rec.Level
		return nil
	})
	return level, leveled, err
}

// OnMessage начисляет пассивный опыт (1–5) за обычное сообщение.
func (s *Service) OnMessage(ctx context.Context, userID string) (int, bool, error) {
	return s.AddXP(ctx, userID, s.rng.Int64Between(passiveXPMin, passiveXPMax))
}

// Profile возвращает копию записи пользователя.
func (s *Service) Profile(ctx context.Context, userID string) (*store.UserRecord, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

// XPToNextLevel — сколько опыта осталось до следующего уровня.
// Порог уровня L — это 100·(L−1)².
func XPToNextLevel(rec *store.UserRecord) int64 {
	next := int64(rec.Level) * int64(rec.Level) * 100
	remaining := next - rec.XP
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AchievementStatus — ачивка с признаком получения.
type AchievementStatus struct {
	Achievement
	Unlocked bool
}

// Achievements лениво догоняет список ачивок до текущего состояния
// записи и возвращает полный список со статусами и числом новых.
func (s *Service) Achievements(ctx context.Context, userID string) ([]AchievementStatus, int, error) {
	var statuses []AchievementStatus
	newly := 0
	err := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		statuses = statuses[:0]
		newly = 0
		for _, a := range achievements {
			unlocked := rec.HasAchievement(a.ID)
			if !unlocked && a.Check(rec) {
				rec.Achievements = append(rec.Achievements, a.ID)
				unlocked = true
				newly++
			}
			statuses = append(statuses, AchievementStatus{Achievement: a, Unlocked: unlocked})
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return statuses, newly, nil
}

// PrestigeCost — стоимость следующего престижа: 10M × 10^prestige.
func PrestigeCost(prestige int) int64 {
	return prestigeBaseCost * int64(math.Pow10(prestige))
}

// PrestigeResult — итог престижа.
type PrestigeResult struct {
	NewPrestige   int
	NewLuck       float64
	NewMoneyBoost float64
}

// Prestige сбрасывает прогресс в обмен на постоянные бонусы: деньги,
// опыт, уровень и инвентарь обнуляются, удача +20, множитель ×1.5.
// Банк и роли переживают престиж.
func (s *Service) Prestige(ctx context.Context, userID string) (*PrestigeResult, error) {
	res := &PrestigeResult{}
	err := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		cost := PrestigeCost(rec.Prestige)
		if rec.Money < cost {
			return common.ErrInsufficientBalance
		}
		rec.Money = 0
		rec.XP = 0
		rec.Level = 1
		rec.Inventory = map[string]int64{}
		rec.Prestige++
		rec.Luck += 20
		rec.MoneyBoost *= 1.5

		res.NewPrestige = rec.Prestige
		res.NewLuck = rec.Luck
		res.NewMoneyBoost = rec.MoneyBoost
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
