// blackjack.go — блэкджек: конечный автомат, управляемый кнопками
// Hit/Stand. Дилер добирает до 17; блэкджек игрока платит 3:2;
// 60 секунд бездействия разрешаются автоматическим Stand.
package casino

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/economy-bot/internal/common"
)

// Параметры блэкджека.
const (
	BlackjackTimeout   = 60 * time.Second
	blackjackTarget    = 21
	dealerStandAt      = 17
	blackjackPayoutNum = 3
	blackjackPayoutDen = 2
)

// Card — карта: достоинство и масть.
type Card struct {
	Rank string
	Suit string
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

var (
	cardSuits = []string{"♠️", "♥️", "♦️", "♣️"}
	cardRanks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

// newDeck собирает перемешанную 52-карточную колоду.
func newDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, len(cardSuits)*len(cardRanks))
	for _, suit := range cardSuits {
		for _, rank := range cardRanks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// HandValue считает стоимость руки: картинки по 10, туз 11 с мягким
// понижением до 1, пока сумма больше 21.
func HandValue(cards []Card) int {
	value := 0
	aces := 0
	for _, c := range cards {
		switch c.Rank {
		case "J", "Q", "K":
			value += 10
		case "A":
			value += 11
			aces++
		case "10":
			value += 10
		default:
			value += int(c.Rank[0] - '0')
		}
	}
	for value > blackjackTarget && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

// FormatHand печатает руку через пробел.
func FormatHand(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Состояния автомата блэкджека.
type BlackjackState int

const (
	BlackjackPlaying BlackjackState = iota
	BlackjackFinished
)

// Исходы партии.
type BlackjackOutcome int

const (
	OutcomeNone BlackjackOutcome = iota
	OutcomePlayerBlackjack
	OutcomePush
	OutcomePlayerBust
	OutcomeDealerBust
	OutcomePlayerWin
	OutcomeDealerWin
)

// BlackjackGame — одна партия.
type BlackjackGame struct {
	mu sync.Mutex

	ID        string
	UserID    string
	ChatID    int64
	MessageID int
	Bet       int64

	deck   []Card
	player []Card
	dealer []Card
	state  BlackjackState
}

// NewBlackjackGame раздаёт начальные руки. Натуральный блэкджек
// разрешается сразу: возвращённый исход не OutcomeNone означает, что
// партия завершена без кнопок.
func (s *Service) NewBlackjackGame(ctx context.Context, userID string, chatID int64, bet int64) (*BlackjackGame, BlackjackOutcome, error) {
	if err := s.checkBet(ctx, userID, bet); err != nil {
		return nil, OutcomeNone, err
	}

	g := &BlackjackGame{
		ID:     uuid.NewString(),
		UserID: userID,
		ChatID: chatID,
		Bet:    bet,
		state:  BlackjackPlaying,
	}
	s.rng.Do(func(rng *rand.Rand) {
		g.deck = newDeck(rng)
	})
	g.player = []Card{g.draw(), g.draw()}
	g.dealer = []Card{g.draw(), g.draw()}

	if HandValue(g.player) == blackjackTarget {
		g.state = BlackjackFinished
		if HandValue(g.dealer) == blackjackTarget {
			return g, OutcomePush, nil
		}
		return g, OutcomePlayerBlackjack, nil
	}
	return g, OutcomeNone, nil
}

func (g *BlackjackGame) draw() Card {
	c := g.deck[len(g.deck)-1]
	g.deck = g.deck[:len(g.deck)-1]
	return c
}

// PlayerHand возвращает копию руки игрока.
func (g *BlackjackGame) PlayerHand() []Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Card(nil), g.player...)
}

// DealerHand возвращает копию руки дилера.
func (g *BlackjackGame) DealerHand() []Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Card(nil), g.dealer...)
}

// Finished сообщает, завершена ли партия.
func (g *BlackjackGame) Finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == BlackjackFinished
}

// Hit берёт карту. Перебор немедленно завершает партию с
// OutcomePlayerBust; иначе исход OutcomeNone и игра продолжается.
func (g *BlackjackGame) Hit(userID string) (BlackjackOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if userID != g.UserID {
		return OutcomeNone, common.ErrNotYourGame
	}
	if g.state != BlackjackPlaying {
		return OutcomeNone, common.ErrGameFinished
	}

	g.player = append(g.player, g.draw())
	if HandValue(g.player) > blackjackTarget {
		g.state = BlackjackFinished
		return OutcomePlayerBust, nil
	}
	return OutcomeNone, nil
}

// Stand останавливает игрока: дилер добирает до 17, затем сравнение.
func (g *BlackjackGame) Stand(userID string) (BlackjackOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if userID != g.UserID {
		return OutcomeNone, common.ErrNotYourGame
	}
	if g.state != BlackjackPlaying {
		return OutcomeNone, common.ErrGameFinished
	}
	g.state = BlackjackFinished

	for HandValue(g.dealer) < dealerStandAt {
		g.dealer = append(g.dealer, g.draw())
	}

	playerValue := HandValue(g.player)
	dealerValue := HandValue(g.dealer)
	switch {
	case dealerValue > blackjackTarget:
		return OutcomeDealerBust, nil
	case playerValue > dealerValue:
		return OutcomePlayerWin, nil
	case playerValue < dealerValue:
		return OutcomeDealerWin, nil
	default:
		return OutcomePush, nil
	}
}

// AutoStand — таймаут бездействия: автоматический Stand от имени
// владельца. В завершённой партии ничего не делает.
func (g *BlackjackGame) AutoStand() (BlackjackOutcome, bool) {
	outcome, err := g.Stand(g.UserID)
	if err != nil {
		return OutcomeNone, false
	}
	return outcome, true
}

// SettleBlackjack применяет исход к балансу и возвращает дельту со
// знаком (0 при пуше).
func (s *Service) SettleBlackjack(ctx context.Context, g *BlackjackGame, outcome BlackjackOutcome) (int64, error) {
	switch outcome {
	case OutcomePlayerBlackjack:
		winnings := g.Bet * blackjackPayoutNum / blackjackPayoutDen
		return s.ledger.AddMoney(ctx, g.UserID, winnings)
	case OutcomeDealerBust, OutcomePlayerWin:
		return s.ledger.AddMoney(ctx, g.UserID, g.Bet)
	case OutcomePlayerBust, OutcomeDealerWin:
		if err := s.ledger.SpendMoney(ctx, g.UserID, g.Bet); err != nil {
			return 0, err
		}
		return -g.Bet, nil
	default:
		return 0, nil
	}
}
