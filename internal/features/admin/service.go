// Package admin — аутентификация администраторов и привилегированные команды.
// Сессии живут в памяти процесса: после рестарта бота /login нужно повторить.
package admin

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/features/items"
	"serotonyl.ru/economy-bot/internal/store"
)

const (
	// SessionTTL — срок жизни админ-сессии после успешного /login.
	SessionTTL = 24 * time.Hour

	// Защита от brute-force: maxAttempts неудачных попыток за attemptWindow
	// блокируют дальнейшие попытки до конца окна.
	maxAttempts   = 3
	attemptWindow = time.Hour
)

var (
	ErrNotAdmin        = errors.New("пользователь не входит в список администраторов")
	ErrWrongPassword   = errors.New("неверный пароль")
	ErrTooManyAttempts = errors.New("слишком много неудачных попыток, подождите час")
	ErrNoSession       = errors.New("нет активной сессии, выполните /login в личных сообщениях")
)

// Service проверяет пароль, ведёт сессии и выполняет привилегированные операции.
type Service struct {
	ledger   *economy.Service
	items    *items.Service
	hash     string
	adminIDs map[int64]bool
	now      func() time.Time

	mu       sync.Mutex
	sessions map[int64]time.Time   // userID → момент истечения сессии
	attempts map[int64][]time.Time // userID → времена неудачных попыток
}

// NewService создаёт сервис. hash — bcrypt-хеш из ADMIN_PASSWORD_HASH,
// adminIDs — белый список Telegram ID из ADMIN_IDS.
func NewService(ledger *economy.Service, itemSvc *items.Service, hash string, adminIDs []int64) *Service {
	ids := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = true
	}
	return &Service{
		ledger:   ledger,
		items:    itemSvc,
		hash:     hash,
		adminIDs: ids,
		now:      time.Now,
		sessions: make(map[int64]time.Time),
		attempts: make(map[int64][]time.Time),
	}
}

// IsAdmin сообщает, входит ли пользователь в белый список.
func (s *Service) IsAdmin(userID int64) bool {
	return s.adminIDs[userID]
}

// Login проверяет пароль и при успехе открывает сессию на SessionTTL.
// Три неудачные попытки за час блокируют пользователя до конца окна.
func (s *Service) Login(userID int64, password string) error {
	if !s.adminIDs[userID] {
		return ErrNotAdmin
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	recent := s.attempts[userID][:0]
	for _, t := range s.attempts[userID] {
		if now.Sub(t) < attemptWindow {
			recent = append(recent, t)
		}
	}
	s.attempts[userID] = recent
	if len(recent) >= maxAttempts {
		return ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.hash), []byte(password)); err != nil {
		s.attempts[userID] = append(s.attempts[userID], now)
		log.WithField("user_id", userID).Warn("Неудачная попытка входа в админку")
		return ErrWrongPassword
	}

	delete(s.attempts, userID)
	s.sessions[userID] = now.Add(SessionTTL)
	log.WithField("user_id", userID).Info("Админ-сессия открыта")
	return nil
}

// HasSession сообщает, есть ли у пользователя живая сессия.
// Истёкшие сессии удаляются по пути.
func (s *Service) HasSession(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.sessions[userID]
	if !ok {
		return false
	}
	if s.now().After(expires) {
		delete(s.sessions, userID)
		return false
	}
	return true
}

// Logout закрывает сессию пользователя, если она была.
func (s *Service) Logout(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Authorize объединяет проверку белого списка и сессии.
func (s *Service) Authorize(userID int64) error {
	if !s.adminIDs[userID] {
		return ErrNotAdmin
	}
	if !s.HasSession(userID) {
		return ErrNoSession
	}
	return nil
}

// GiveCoins начисляет (или списывает при отрицательном amount) монеты
// напрямую, минуя бусты и казну.
func (s *Service) GiveCoins(ctx context.Context, adminID int64, target string, amount int64) (*store.UserRecord, error) {
	if err := s.Authorize(adminID); err != nil {
		return nil, err
	}
	rec, err := s.ledger.Adjust(ctx, target, amount)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"admin_id": adminID,
		"target":   target,
		"amount":   amount,
	}).Info("Админ изменил баланс")
	return rec, nil
}

// GiveItem кладёт count экземпляров предмета в инвентарь пользователя.
// Возвращает новое количество предмета.
func (s *Service) GiveItem(ctx context.Context, adminID int64, target, item string, count int64) (int64, error) {
	if err := s.Authorize(adminID); err != nil {
		return 0, err
	}
	total, err := s.items.AddItem(ctx, target, item, count)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"admin_id": adminID,
		"target":   target,
		"item":     item,
		"count":    count,
	}).Info("Админ выдал предмет")
	return total, nil
}
