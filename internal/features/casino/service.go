// Package casino — азартные игры: gamble, coinflip, слоты, колесо
// фортуны, crash и блэкджек. Ставки списываются через казну только при
// проигрыше; выигрыши начисляются с учётом множителя игрока — баланс
// игр воспроизводит исторический (включая щедрую математику gamble).
package casino

import (
	"context"
	"math/rand"

	"serotonyl.ru/economy-bot/internal/common"
	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

// Стоимость колеса фортуны.
const spinCost = 50

// Service — ставки и розыгрыши.
type Service struct {
	repo   *store.Repository
	rng    *rewards.Source
	ledger *economy.Service
}

// NewService создаёт сервис казино.
func NewService(repo *store.Repository, rng *rewards.Source, ledger *economy.Service) *Service {
	return &Service{repo: repo, rng: rng, ledger: ledger}
}

// checkBet проверяет ставку и наличие денег, ничего не списывая.
func (s *Service) checkBet(ctx context.Context, userID string, bet int64) error {
	if bet <= 0 {
		return common.ErrInvalidBet
	}
	rec, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if rec.Money < bet {
		return common.ErrInsufficientBalance
	}
	return nil
}

// GambleResult — итог 50/50 ставки.
type GambleResult struct {
	Won      bool
	Credited int64
}

// Gamble — 50/50: выигрыш зачисляет удвоенную ставку, проигрыш
// списывает её в казну.
func (s *Service) Gamble(ctx context.Context, userID string, amount int64) (*GambleResult, error) {
	if err := s.checkBet(ctx, userID, amount); err != nil {
		return nil, err
	}

	if s.rng.IntN(2) == 0 {
		credited, err := s.ledger.AddMoney(ctx, userID, amount*2)
		if err != nil {
			return nil, err
		}
		return &GambleResult{Won: true, Credited: credited}, nil
	}
	if err := s.ledger.SpendMoney(ctx, userID, amount); err != nil {
		return nil, err
	}
	return &GambleResult{}, nil
}

// Стороны монеты.
const (
	Heads = "heads"
	Tails = "tails"
)

// NormalizeCoinChoice приводит ввод пользователя к heads/tails.
func NormalizeCoinChoice(choice string) (string, error) {
	switch choice {
	case "heads", "h":
		return Heads, nil
	case "tails", "t":
		return Tails, nil
	default:
		return "", common.ErrInvalidChoice
	}
}

// CoinflipResult — итог подбрасывания.
type CoinflipResult struct {
	Choice   string
	Landed   string
	Won      bool
	Credited int64
}

// Coinflip — ставка на сторону монеты; математика как у Gamble.
func (s *Service) Coinflip(ctx context.Context, userID string, bet int64, choice string) (*CoinflipResult, error) {
	normalized, err := NormalizeCoinChoice(choice)
	if err != nil {
		return nil, err
	}
	if err := s.checkBet(ctx, userID, bet); err != nil {
		return nil, err
	}

	landed := Heads
	if s.rng.IntN(2) == 1 {
		landed = Tails
	}

	res := &CoinflipResult{Choice: normalized, Landed: landed}
	if normalized == landed {
		res.Won = true
		res.Credited, err = s.ledger.AddMoney(ctx, userID, bet*2)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	if err := s.ledger.SpendMoney(ctx, userID, bet); err != nil {
		return nil, err
	}
	return res, nil
}

// Приз колеса фортуны.
type wheelPrize struct {
	Name     string
	Min, Max int64
}

var wheelTable = []rewards.Weighted[wheelPrize]{
	{Value: wheelPrize{"💥 JACKPOT!", 5_000, 10_000}, Weight: 2},
	{Value: wheelPrize{"💰 Big Win", 1_000, 3_000}, Weight: 5},
	{Value: wheelPrize{"🎉 Good Win", 500, 1_000}, Weight: 10},
	{Value: wheelPrize{"😊 Small Win", 100, 300}, Weight: 25},
	{Value: wheelPrize{"😐 Tiny Win", 10, 50}, Weight: 35},
	{Value: wheelPrize{"😢 Nothing", 0, 0}, Weight: 23},
}

// SpinResult — итог колеса фортуны.
type SpinResult struct {
	Prize    string
	Credited int64
}

// SpinCost — стоимость прокрута колеса.
func SpinCost() int64 { return spinCost }

// Spin крутит колесо фортуны: списывает 50 монет и разыгрывает приз
// по взвешенной таблице.
func (s *Service) Spin(ctx context.Context, userID string) (*SpinResult, error) {
	if err := s.ledger.SpendMoney(ctx, userID, spinCost); err != nil {
		return nil, err
	}

	var prize wheelPrize
	var pickErr error
	s.rng.Do(func(rng *rand.Rand) {
		prize, pickErr = rewards.Pick(rng, wheelTable)
	})
	if pickErr != nil {
		return nil, pickErr
	}

	res := &SpinResult{Prize: prize.Name}
	if prize.Max > 0 {
		amount := s.rng.Int64Between(prize.Min, prize.Max)
		credited, err := s.ledger.AddMoney(ctx, userID, amount)
		if err != nil {
			return nil, err
		}
		res.Credited = credited
	}
	return res, nil
}
