// crash.go — игра crash: конечный автомат RUNNING → {CASHED_OUT,
// CRASHED}. Тикает раз в секунду после двухсекундного разгона; 30
// секунд без кэшаута принудительно завершают игру крашем.
package casino

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/economy-bot/internal/common"
)

// Параметры игры crash.
const (
	CrashLeadIn    = 2 * time.Second
	CrashTick      = 1 * time.Second
	CrashTimeout   = 30 * time.Second
	crashTickStep  = 0.1
	crashPointMin  = 1.01
	crashPointMax  = 10.0
	crashStartMult = 1.0
)

// Состояния автомата crash.
type CrashState int

const (
	CrashRunning CrashState = iota
	CrashCashedOut
	CrashCrashed
)

// CrashGame — одна партия. Все переходы — под мьютексом; терминальное
// состояние достигается ровно один раз.
type CrashGame struct {
	mu sync.Mutex

	ID         string
	UserID     string
	ChatID     int64
	MessageID  int
	Bet        int64
	CrashPoint float64

	state      CrashState
	multiplier float64
}

// NewCrashGame создаёт партию с разыгранной точкой краша.
func (s *Service) NewCrashGame(ctx context.Context, userID string, chatID int64, bet int64) (*CrashGame, error) {
	if err := s.checkBet(ctx, userID, bet); err != nil {
		return nil, err
	}
	crashPoint := math.Round(s.rng.Float64Between(crashPointMin, crashPointMax)*100) / 100
	return &CrashGame{
		ID:         uuid.NewString(),
		UserID:     userID,
		ChatID:     chatID,
		Bet:        bet,
		CrashPoint: crashPoint,
		state:      CrashRunning,
		multiplier: crashStartMult,
	}, nil
}

// State возвращает текущее состояние.
func (g *CrashGame) State() CrashState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Multiplier возвращает текущий множитель.
func (g *CrashGame) Multiplier() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.multiplier
}

// Tick продвигает множитель на шаг. Возвращает (multiplier, crashed):
// достижение точки краша переводит автомат в CRASHED. Тик в
// терминальном состоянии ничего не меняет.
func (g *CrashGame) Tick() (float64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != CrashRunning {
		return g.multiplier, g.state == CrashCrashed
	}
	g.multiplier = math.Round((g.multiplier+crashTickStep)*100) / 100
	if g.multiplier >= g.CrashPoint {
		g.state = CrashCrashed
		return g.multiplier, true
	}
	return g.multiplier, false
}

// CashOut переводит автомат в CASHED_OUT и возвращает множитель
// кэшаута. В терминальном состоянии — ErrGameFinished; чужой
// пользователь получает ErrNotYourGame.
func (g *CrashGame) CashOut(userID string) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if userID != g.UserID {
		return 0, common.ErrNotYourGame
	}
	if g.state != CrashRunning {
		return 0, common.ErrGameFinished
	}
	g.state = CrashCashedOut
	return g.multiplier, nil
}

// ForceCrash принудительно завершает партию (таймаут). Возвращает
// false, если автомат уже в терминальном состоянии.
func (g *CrashGame) ForceCrash() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != CrashRunning {
		return false
	}
	g.state = CrashCrashed
	return true
}

// SettleCrashWin начисляет выигрыш кэшаута: ставка×множитель минус
// сама ставка (она не списывалась при старте).
func (s *Service) SettleCrashWin(ctx context.Context, g *CrashGame, multiplier float64) (int64, error) {
	winnings := int64(float64(g.Bet) * multiplier)
	return s.ledger.AddMoney(ctx, g.UserID, winnings-g.Bet)
}

// SettleCrashLoss списывает ставку краша в казну.
func (s *Service) SettleCrashLoss(ctx context.Context, g *CrashGame) error {
	return s.ledger.SpendMoney(ctx, g.UserID, g.Bet)
}
