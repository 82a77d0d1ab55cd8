// slots.go — слот-машина: три независимых взвешенных барабана.
package casino

import (
	"context"
	"math/rand"

	"serotonyl.ru/economy-bot/internal/rewards"
)

// slotSymbol — символ барабана с весом выпадения и множителем выплаты.
type slotSymbol struct {
	Symbol string
	Payout int64
}

var slotTable = []rewards.Weighted[slotSymbol]{
	{Value: slotSymbol{"🍒", 2}, Weight: 30},
	{Value: slotSymbol{"🍋", 3}, Weight: 25},
	{Value: slotSymbol{"🍊", 4}, Weight: 20},
	{Value: slotSymbol{"🍇", 5}, Weight: 15},
	{Value: slotSymbol{"🔔", 10}, Weight: 8},
	{Value: slotSymbol{"💎", 50}, Weight: 2},
}

func slotPayout(symbol string) int64 {
	for _, row := range slotTable {
		if row.Value.Symbol == symbol {
			return row.Value.Payout
		}
	}
	return 0
}

// SlotsResult — итог прокрута слотов.
type SlotsResult struct {
	Reels    [3]string
	Kind     string // jackpot / pair / loss
	Won      int64  // брутто-выигрыш по таблице (0 при проигрыше)
	Credited int64  // фактическое изменение баланса со знаком
}

// Виды исходов слотов.
const (
	SlotsJackpot = "jackpot"
	SlotsPair    = "pair"
	SlotsLoss    = "loss"
)

// settleSlots вычисляет исход по трём символам и ставке.
// Три совпадения платят ставка×множитель, два — половину ставки;
// начисление в обоих случаях идёт за вычетом уже «потраченной» ставки.
func settleSlots(reels [3]string, bet int64) (kind string, won int64, delta int64) {
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		won = bet * slotPayout(reels[0])
		return SlotsJackpot, won, won - bet
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		won = bet / 2
		return SlotsPair, won, won - bet
	default:
		return SlotsLoss, 0, -bet
	}
}

// Slots крутит слоты: проигрыш списывает ставку в казну, выигрышные
// комбинации начисляют таблицу минус ставку (половина ставки при паре
// даёт отрицательное нетто — это историческое поведение).
func (s *Service) Slots(ctx context.Context, userID string, bet int64) (*SlotsResult, error) {
	if err := s.checkBet(ctx, userID, bet); err != nil {
		return nil, err
	}

	var reels [3]string
	var pickErr error
	s.rng.Do(func(rng *rand.Rand) {
		for i := range reels {
			var sym slotSymbol
			sym, pickErr = rewards.Pick(rng, slotTable)
			if pickErr != nil {
				return
			}
			reels[i] = sym.Symbol
		}
	})
	if pickErr != nil {
		return nil, pickErr
	}

	kind, won, delta := settleSlots(reels, bet)
	res := &SlotsResult{Reels: reels, Kind: kind, Won: won}

	if kind == SlotsLoss {
		if err := s.ledger.SpendMoney(ctx, userID, bet); err != nil {
			return nil, err
		}
		res.Credited = -bet
		return res, nil
	}

	credited, err := s.ledger.AddMoney(ctx, userID, delta)
	if err != nil {
		return nil, err
	}
	res.Credited = credited
	return res, nil
}
