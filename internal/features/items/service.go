// service.go — бизнес-логика предметов: роллы, инвентарь, продажа,
// магазин и мистери-боксы.
package items

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"serotonyl.ru/economy-bot/internal/common"
	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

// Пороговые вероятности ультра-редких роллов.
const (
	nullChance   = 1e-34
	cosmicChance = 1e-10
)

// Именованные предметы особых веток ролла.
const (
	nullItemName     = "Fragment Of Reality"
	cosmicFallback   = "The One Ring"
	inventoryPerPage = 10
)

// RoleGranter выдаёт роль пользователю. Реализация по умолчанию пишет
// роль в запись; Telegram настоящих ролей не имеет, но контракт с
// возвратом денег при отказе сохранён.
type RoleGranter interface {
	GrantRole(ctx context.Context, userID, roleName string) error
}

// RecordRoleGranter хранит роли прямо в записи пользователя.
type RecordRoleGranter struct {
	repo *store.Repository
}

// NewRecordRoleGranter — грантер поверх репозитория.
func NewRecordRoleGranter(repo *store.Repository) *RecordRoleGranter {
	return &RecordRoleGranter{repo: repo}
}

// GrantRole записывает роль в профиль пользователя.
func (g *RecordRoleGranter) GrantRole(ctx context.Context, userID, roleName string) error {
	return g.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		if rec.HasRole(roleName) {
			return common.ErrAlreadyOwned
		}
		rec.Roles = append(rec.Roles, roleName)
		return nil
	})
}

// Service — операции над предметами.
type Service struct {
	repo     *store.Repository
	catalog  *store.Catalog
	rng      *rewards.Source
	ledger   *economy.Service
	granter  RoleGranter
	rollCost int64
}

// NewService создаёт сервис предметов.
func NewService(repo *store.Repository, catalog *store.Catalog, rng *rewards.Source,
	ledger *economy.Service, granter RoleGranter, rollCost int64) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		rng:      rng,
		ledger:   ledger,
		granter:  granter,
		rollCost: rollCost,
	}
}

// RollCost — текущая стоимость ролла.
func (s *Service) RollCost() int64 {
	return s.rollCost
}

// AddItem добавляет предметы в инвентарь, возвращает новое количество.
func (s *Service) AddItem(ctx context.Context, userID, name string, n int64) (int64, error) {
	if n <= 0 {
		return 0, common.ErrInvalidAmount
	}
	var qty int64
	err := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		rec.Inventory[name] += n
		qty = rec.Inventory[name]
		return nil
	})
	return qty, err
}

// RemoveItem убирает предметы из инвентаря. Нулевой остаток удаляет
// ключ: в инвентаре не бывает нулей и отрицательных количеств.
func (s *Service) RemoveItem(ctx context.Context, userID, name string, n int64) error {
	if n <= 0 {
		return common.ErrInvalidAmount
	}
	return s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		if rec.Inventory[name] < n {
			return common.ErrNotEnoughItems
		}
		rec.Inventory[name] -= n
		if rec.Inventory[name] <= 0 {
			delete(rec.Inventory, name)
		}
		return nil
	})
}

// RollResult — итог ролла.
type RollResult struct {
	Item     string
	Rarity   store.Rarity
	Value    int64
	Quantity int64
	Special  string // подпись особой ветки (reality/cosmic), если была
}

// Roll списывает стоимость ролла и разыгрывает предмет. Ультра-редкие
// ветки проверяются до обычного розыгрыша по редкости.
func (s *Service) Roll(ctx context.Context, userID string) (*RollResult, error) {
	rec, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.SpendMoney(ctx, userID, s.rollCost); err != nil {
		return nil, err
	}

	res := &RollResult{}
	p := s.rng.Float64()
	switch {
	case p < nullChance:
		res.Item = nullItemName
		res.Rarity = store.RarityNull
		res.Special = "REALITY HAS BROKEN"
	case p < cosmicChance:
		if pool := s.catalog.ByRarity(store.RarityCosmic); len(pool) > 0 {
			res.Item = pool[s.rng.IntN(len(pool))]
			res.Rarity = store.RarityCosmic
		} else {
			res.Item = cosmicFallback
			res.Rarity = store.RarityLegendary
		}
		res.Special = "COSMIC PHENOMENON"
	default:
		var pickErr error
		s.rng.Do(func(rng *rand.Rand) {
			var rarity store.Rarity
			rarity, pickErr = rewards.PickRarity(rng, rec.TotalLuck())
			if pickErr != nil {
				return
			}
			res.Rarity = rarity
			res.Item, pickErr = rewards.PickOne(rng, s.catalog.ByRarity(rarity))
		})
		if pickErr != nil {
			return nil, pickErr
		}
	}

	if item, ok := s.catalog.Get(res.Item); ok {
		res.Value = item.Value
	}
	res.Quantity, err = s.AddItem(ctx, userID, res.Item, 1)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// InventoryEntry — строка инвентаря.
type InventoryEntry struct {
	Name     string
	Quantity int64
	Rarity   store.Rarity
	Value    int64
}

// InventoryPage возвращает страницу инвентаря (по 10 позиций,
// отсортированных по цене за штуку по убыванию) и число страниц.
func (s *Service) InventoryPage(ctx context.Context, userID string, page int) ([]InventoryEntry, int, error) {
	rec, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]InventoryEntry, 0, len(rec.Inventory))
	for name, qty := range rec.Inventory {
		e := InventoryEntry{Name: name, Quantity: qty, Rarity: store.RarityCommon}
		if item, ok := s.catalog.Get(name); ok {
			e.Rarity = item.Rarity
			e.Value = item.Value
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Name < entries[j].Name
	})

	pages := (len(entries) + inventoryPerPage - 1) / inventoryPerPage
	if pages == 0 {
		return nil, 0, nil
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * inventoryPerPage
	end := start + inventoryPerPage
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], pages, nil
}

// SellResult — итог продажи.
type SellResult struct {
	Item     string
	Credited int64
}

// Sell продаёт одну штуку предмета по каталожной цене. Имя ищется без
// учёта регистра среди предметов в инвентаре.
func (s *Service) Sell(ctx context.Context, userID, name string) (*SellResult, error) {
	rec, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	actual := ""
	for inv := range rec.Inventory {
		if strings.EqualFold(inv, name) {
			actual = inv
			break
		}
	}
	if actual == "" {
		return nil, common.ErrItemNotFound
	}

	item, ok := s.catalog.Get(actual)
	if !ok || item.Value == 0 {
		return nil, common.ErrItemWorthless
	}

	if err := s.RemoveItem(ctx, userID, actual, 1); err != nil {
		return nil, err
	}
	credited, err := s.ledger.AddMoney(ctx, userID, item.Value)
	if err != nil {
		return nil, err
	}
	return &SellResult{Item: actual, Credited: credited}, nil
}

// SellAllResult — итог массовой продажи.
type SellAllResult struct {
	Sold     []SellResult
	Total    int64
	Credited int64
}

// SellAll продаёт весь инвентарь по каталожным ценам. Предметы, которых
// нет в каталоге, пропускаются и остаются в инвентаре.
func (s *Service) SellAll(ctx context.Context, userID string) (*SellAllResult, error) {
	res := &SellAllResult{}
	err := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
		if len(rec.Inventory) == 0 {
			return common.ErrItemNotFound
		}
		names := make([]string, 0, len(rec.Inventory))
		for name := range rec.Inventory {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			item, ok := s.catalog.Get(name)
			if !ok || item.Value == 0 {
				continue
			}
			qty := rec.Inventory[name]
			total := item.Value * qty
			res.Sold = append(res.Sold, SellResult{Item: name, Credited: total})
			res.Total += total
			delete(rec.Inventory, name)
		}
		if res.Total == 0 {
			res.Sold = nil
			return common.ErrItemWorthless
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	credited, err := s.ledger.AddMoney(ctx, userID, res.Total)
	if err != nil {
		return nil, err
	}
	res.Credited = credited
	return res, nil
}

// BoxReward — награда из мистери-бокса: либо монеты, либо предмет.
type BoxReward struct {
	Coins    int64
	Item     string
	Rarity   store.Rarity
	Value    int64
	Quantity int64
}

// OpenBox разыгрывает и начисляет награду бокса (без списания цены).
// Двухэтапный розыгрыш: сперва монеты-или-предмет по проценту яруса,
// затем поддиапазон и сумма (монеты) либо предмет из разрешённых
// редкостей. Пустой пул предметов откатывается в монетную ветку.
func (s *Service) OpenBox(ctx context.Context, userID string, box MysteryBox) (*BoxReward, error) {
	reward := &BoxReward{}

	coinReward := func() (int64, error) {
		if len(box.CoinRanges) == 0 {
			return 0, common.ErrEmptyRewardPool
		}
		r := box.CoinRanges[s.rng.IntN(len(box.CoinRanges))]
		return s.rng.Int64Between(r.Min, r.Max), nil
	}

	roll := s.rng.IntN(100) + 1
	pool := s.catalog.ByRarities(box.Rarities...)
	if roll > box.CoinChance && len(pool) > 0 {
		reward.Item = pool[s.rng.IntN(len(pool))]
		if item, ok := s.catalog.Get(reward.Item); ok {
			reward.Rarity = item.Rarity
			reward.Value = item.Value
		}
		qty, err := s.AddItem(ctx, userID, reward.Item, 1)
		if err != nil {
			return nil, err
		}
		reward.Quantity = qty
		return reward, nil
	}

	amount, err := coinReward()
	if err != nil {
		return nil, err
	}
	credited, err := s.ledger.AddMoney(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	reward.Coins = credited
	return reward, nil
}

// PurchaseResult — итог покупки в магазине.
type PurchaseResult struct {
	Shop *ShopItem
	Box  *MysteryBox
	// Роль/бонус/награда в зависимости от вида покупки.
	RoleName  string
	Coins     int64
	XP        int64
	BoxReward *BoxReward
}

// Buy покупает позицию магазина или мистери-бокс по идентификатору.
// Покупка роли возвращает деньги, если выдача роли не удалась.
func (s *Service) Buy(ctx context.Context, userID, id string) (*PurchaseResult, error) {
	if box, ok := BoxByID(id); ok {
		if err := s.ledger.SpendMoney(ctx, userID, box.Price); err != nil {
			return nil, err
		}
		reward, err := s.OpenBox(ctx, userID, box)
		if err != nil {
			return nil, err
		}
		return &PurchaseResult{Box: &box, BoxReward: reward}, nil
	}

	item, ok := ShopItemByID(id)
	if !ok {
		return nil, common.ErrItemNotFound
	}
	if err := s.ledger.SpendMoney(ctx, userID, item.Price); err != nil {
		return nil, err
	}

	res := &PurchaseResult{Shop: &item}
	switch item.Kind {
	case shopKindRole:
		if err := s.granter.GrantRole(ctx, userID, item.RoleName); err != nil {
			// Возврат денег: зачисляем цену напрямую, без множителя.
			if rerr := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
				rec.Money += item.Price
				return nil
			}); rerr != nil {
				return nil, rerr
			}
			return nil, err
		}
		res.RoleName = item.RoleName
	case shopKindCoins:
		credited, err := s.ledger.AddMoney(ctx, userID, item.CoinsBonus)
		if err != nil {
			return nil, err
		}
		res.Coins = credited
	case shopKindXP:
		err := s.repo.Update(ctx, userID, func(rec *store.UserRecord) error {
			rec.AddXP(item.XPBonus)
			return nil
		})
		if err != nil {
			return nil, err
		}
		res.XP = item.XPBonus
	}
	return res, nil
}
