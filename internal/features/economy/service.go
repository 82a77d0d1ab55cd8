// Package economy — кошелёк, банк, переводы, ежедневная награда и
// таблица лидеров. Все списания проходят через казну: потраченные
// монеты не исчезают, а оседают в банке казначейского аккаунта.
package economy

import (
	"context"
	"sort"
	"time"

	"serotonyl.ru/economy-bot/internal/common"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

// Кулдаун и размеры ежедневной награды.
const (
	DailyCooldown = 24 * time.Hour
	dailyMinCoins = 100
	dailyMaxCoins = 500
	dailyXP       = 50
)

// Service — операции над балансами.
type Service struct {
	repo     *store.Repository
	rng      *rewards.Source
	treasury string
	now      func() time.Time
}

// NewService создаёт сервис экономики. treasuryID — аккаунт-казна,
// получающий все списания.
func NewService(repo *store.Repository, rng *rewards.Source, treasuryID string) *Service {
	return &Service{
		repo:     repo,
		rng:      rng,
		treasury: treasuryID,
		now:      time.Now,
	}
}

// TreasuryID возвращает идентификатор казны.
func (s *Service) TreasuryID() string {
	return s.treasury
}

// credit начисляет монеты с учётом множителя. Отрицательная сумма
// уменьшает баланс как есть (не ниже нуля).
func credit(rec *store.UserRecord, amount int64) int64 {
	if amount > 0 {
		amount = int64(float64(amount) * rec.MoneyBoost)
	}
	rec.Money += amount
	if rec.Money < 0 {
		rec.Money = 0
	}
	return amount
}

// AddMoney начисляет монеты пользователю с учётом его money_boost.
// Возвращает фактически начисленную сумму.
func (s *Service) AddMoney(ctx context.Context, userID string, amount int64) (int64, error) {
	var credited int64
	err := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		credited = credit(rec, amount)
		return nil
	})
	return credited, err
}

// Adjust меняет баланс напрямую, без множителя и без перевода в казну.
// Используется админ-командами. Баланс не опускается ниже нуля.
func (s *Service) Adjust(ctx context.Context, userID string, amount int64) (*store.UserRecord, error) {
	var out *store.UserRecord
	err := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		rec.Money += amount
		if rec.Money < 0 {
			rec.Money = 0
		}
		out = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SpendMoney списывает монеты и зачисляет их в банк казны. Казна,
// тратя сама, в собственный банк ничего не перекладывает.
func (s *Service) SpendMoney(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	return s.repo.UpdateTwo(ctx, userID, s.treasury, func(user, bank *store.UserRecord) error {
		if user.Money < amount {
			return common.ErrInsufficientBalance
		}
		user.Money -= amount
		if userID != s.treasury {
			bank.Bank += amount
		}
		return nil
	})
}

// Give переводит монеты между пользователями без комиссии.
func (s *Service) Give(ctx context.Context, fromID, toID string, amount int64) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	if fromID == toID {
		return common.ErrSelfTransfer
	}
	return s.repo.UpdateTwo(ctx, fromID, toID, func(from, to *store.UserRecord) error {
		if from.Money < amount {
			return common.ErrInsufficientBalance
		}
		from.Money -= amount
		to.Money += amount
		return nil
	})
}

// Deposit переносит монеты из кошелька в банк.
func (s *Service) Deposit(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	return s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		if rec.Money < amount {
			return common.ErrInsufficientBalance
		}
		rec.Money -= amount
		rec.Bank += amount
		return nil
	})
}

// Withdraw переносит монеты из банка в кошелёк.
func (s *Service) Withdraw(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	return s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		if rec.Bank < amount {
			return common.ErrInsufficientBank
		}
		rec.Bank -= amount
		rec.Money += amount
		return nil
	})
}

// DailyResult — итог ежедневной награды.
type DailyResult struct {
	Coins     int64
	XP        int64
	LeveledUp bool
	NewLevel  int
	Remaining time.Duration // > 0, если награда на кулдауне
}

// Daily выдаёт ежедневную награду: 100–500 монет (с учётом буста)
// и 50 опыта. Повторный вызов раньше, чем через сутки, возвращает
// ErrOnCooldown и остаток ожидания.
func (s *Service) Daily(ctx context.Context, userID string) (*DailyResult, error) {
	res := &DailyResult{}
	err := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		now := s.now()
		last := time.Unix(rec.LastDaily, 0)
		if rec.LastDaily > 0 && now.Sub(last) < DailyCooldown {
			res.Remaining = DailyCooldown - now.Sub(last)
			return common.ErrOnCooldown
		}

		base := s.rng.Int64Between(dailyMinCoins, dailyMaxCoins)
		res.Coins = credit(rec, base)
		res.XP = dailyXP
		res.LeveledUp = rec.AddXP(dailyXP)
		res.NewLevel = rec.Level
		rec.LastDaily = now.Unix()
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

// Балансовые показатели для лидерборда.
const (
	BoardMoney = "money"
	BoardLevel = "level"
	BoardBank  = "bank"
	BoardTotal = "total"
)

// BoardEntry — строка таблицы лидеров.
type BoardEntry struct {
	UserID string
	Score  int64
}

// Leaderboard возвращает до limit лучших пользователей по выбранному
// показателю. Казна в рейтинге не участвует.
func (s *Service) Leaderboard(ctx context.Context, kind string, limit int) ([]BoardEntry, error) {
	table, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	score := func(rec *store.UserRecord) int64 {
		switch kind {
		case BoardLevel:
			return int64(rec.Level)
		case BoardBank:
			return rec.Bank
		case BoardTotal:
			return rec.NetWorth()
		default:
			return rec.Money
		}
	}

	entries := make([]BoardEntry, 0, len(table))
	for id, rec := range table {
		if id == s.treasury {
			continue
		}
		entries = append(entries, BoardEntry{UserID: id, Score: score(rec)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
