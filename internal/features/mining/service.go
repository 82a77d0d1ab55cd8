// Package mining — бесплатная добыча: каскад процентилей от пустого
// угля до легендарного предмета. Пустой пул предметов заменяется
// монетной выплатой задокументированного диапазона, а не ошибкой.
package mining

import (
	"context"

	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/features/items"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

// Исходы добычи.
const (
	KindNothing = "nothing"
	KindCoins   = "coins"
	KindBox     = "box"
	KindItem    = "item"
)

// Result — итог одной добычи.
type Result struct {
	Kind     string
	Flavor   string // заголовок исхода для сообщения
	Coins    int64  // фактически начисленные монеты
	Item     string
	Rarity   store.Rarity
	Value    int64
	Quantity int64
	Box      *items.BoxReward // содержимое найденного бокса
}

// Service — добыча.
type Service struct {
	catalog *store.Catalog
	rng     *rewards.Source
	ledger  *economy.Service
	items   *items.Service
}

// NewService создаёт сервис добычи.
func NewService(catalog *store.Catalog, rng *rewards.Source, ledger *economy.Service, itemSvc *items.Service) *Service {
	return &Service{catalog: catalog, rng: rng, ledger: ledger, items: itemSvc}
}

// Mine выполняет один цикл добычи по каскаду процентилей:
// ≤92 пусто; ≤97 монеты 1–50; ≤98 базовый бокс, открытый на месте;
// ≤99 монеты 50–300; ≤99.9 эпический предмет (fallback 200–800);
// остаток — точный розыгрыш: ≤0.001% легендарка (fallback 1000–5000),
// иначе эпик (fallback 500–2000).
func (s *Service) Mine(ctx context.Context, userID string) (*Result, error) {
	p := s.rng.Percent()
	switch {
	case p <= 92:
		return &Result{Kind: KindNothing, Flavor: "🪨 You found some coal... it's worthless!"}, nil
	case p <= 97:
		return s.coins(ctx, userID, 1, 50, "💰 You struck gold!")
	case p <= 98:
		return s.basicBox(ctx, userID)
	case p <= 99:
		return s.coins(ctx, userID, 50, 300, "💎 JACKPOT!")
	case p <= 99.9:
		return s.item(ctx, userID, store.RarityEpic, 200, 800, "🌟 ULTRA RARE!")
	default:
		if s.rng.Percent() <= 0.001 {
			return s.item(ctx, userID, store.RarityLegendary, 1_000, 5_000, "👑 LEGENDARY!")
		}
		return s.item(ctx, userID, store.RarityEpic, 500, 2_000, "🌟 EPIC!")
	}
}

func (s *Service) coins(ctx context.Context, userID string, min, max int64, flavor string) (*Result, error) {
	amount := s.rng.Int64Between(min, max)
	credited, err := s.ledger.AddMoney(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: KindCoins, Flavor: flavor, Coins: credited}, nil
}

func (s *Service) basicBox(ctx context.Context, userID string) (*Result, error) {
	box, ok := items.BoxByID("basic")
	if !ok {
		// Базовый ярус захардкожен в таблице боксов.
		return s.coins(ctx, userID, 100, 500, "📦 You found a box of coins!")
	}
	reward, err := s.items.OpenBox(ctx, userID, box)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: KindBox, Flavor: "📦 Amazing! You found a Basic Mystery Box!", Box: reward}, nil
}

// item выдаёт предмет заданной редкости; при пустом пуле — монеты из
// диапазона fallback.
func (s *Service) item(ctx context.Context, userID string, rarity store.Rarity, fbMin, fbMax int64, flavor string) (*Result, error) {
	pool := s.catalog.ByRarity(rarity)
	if len(pool) == 0 {
		return s.coins(ctx, userID, fbMin, fbMax, flavor)
	}

	name := pool[s.rng.IntN(len(pool))]
	qty, err := s.items.AddItem(ctx, userID, name, 1)
	if err != nil {
		return nil, err
	}
	res := &Result{Kind: KindItem, Flavor: flavor, Item: name, Rarity: rarity, Quantity: qty}
	if item, ok := s.catalog.Get(name); ok {
		res.Value = item.Value
	}
	return res, nil
}
