// Package lottery — лотерея: четыре номера дома против четырёх догадок,
// выплата по числу совпадений, частота выигрышных номеров копится в
// отдельном файле независимо от исхода.
package lottery

import (
	"context"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/economy-bot/internal/common"
	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

// Диапазон номеров и размер тиража.
const (
	NumberMin = 1
	NumberMax = 100
	DrawSize  = 4
)

// Выплаты по числу совпадений.
var payoutTable = map[int]int64{
	0: 0,
	1: 2_500,
	2: 10_000,
	3: 200_000,
	4: 1_000_000,
}

// Payout возвращает выплату за число совпадений.
func Payout(matches int) int64 {
	return payoutTable[matches]
}

// Service — розыгрыш лотереи.
type Service struct {
	rng     *rewards.Source
	ledger  *economy.Service
	history *store.LotteryHistory
}

// NewService создаёт сервис лотереи.
func NewService(rng *rewards.Source, ledger *economy.Service, history *store.LotteryHistory) *Service {
	return &Service{rng: rng, ledger: ledger, history: history}
}

// HotNumbers возвращает n самых частых выигрышных номеров.
func (s *Service) HotNumbers(n int) ([]string, error) {
	return s.history.Top(n)
}

// ValidateGuesses проверяет, что все догадки в диапазоне [1, 100].
func ValidateGuesses(guesses []int) error {
	if len(guesses) != DrawSize {
		return common.ErrInvalidChoice
	}
	for _, n := range guesses {
		if n < NumberMin || n > NumberMax {
			return common.ErrInvalidChoice
		}
	}
	return nil
}

// CountMatches считает догадки, входящие в тираж (по принадлежности,
// как в историческом боте: повторная догадка одного номера считается
// дважды).
func CountMatches(guesses, drawn []int) int {
	inDraw := map[int]bool{}
	for _, n := range drawn {
		inDraw[n] = true
	}
	matches := 0
	for _, g := range guesses {
		if inDraw[g] {
			matches++
		}
	}
	return matches
}

// Result — итог тиража.
type Result struct {
	Guesses  []int
	Drawn    []int
	Matches  int
	Won      int64
	Credited int64
}

// Play разыгрывает тираж: четыре номера дома (равномерно, независимо
// от догадок), выплата по таблице, номера записываются в историю.
func (s *Service) Play(ctx context.Context, userID string, guesses []int) (*Result, error) {
	if err := ValidateGuesses(guesses); err != nil {
		return nil, err
	}

	drawn := make([]int, DrawSize)
	for i := range drawn {
		drawn[i] = int(s.rng.Int64Between(NumberMin, NumberMax))
	}
	return s.settle(ctx, userID, guesses, drawn)
}

// settle отделён от Play, чтобы тесты могли зафиксировать тираж.
func (s *Service) settle(ctx context.Context, userID string, guesses, drawn []int) (*Result, error) {
	if err := s.history.Record(drawn); err != nil {
		// История — побочный счётчик; тираж важнее.
		log.WithError(err).Warn("не удалось записать историю лотереи")
	}

	res := &Result{
		Guesses: guesses,
		Drawn:   drawn,
		Matches: CountMatches(guesses, drawn),
	}
	res.Won = Payout(res.Matches)
	if res.Won > 0 {
		credited, err := s.ledger.AddMoney(ctx, userID, res.Won)
		if err != nil {
			return nil, err
		}
		res.Credited = credited
	}
	return res, nil
}
