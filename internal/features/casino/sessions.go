// sessions.go — таблица живых игровых сессий. Кнопки находят партию
// по uuid из callback data; завершённые партии удаляются сразу.
package casino

import "sync"

// Sessions — in-memory реестр активных партий crash и блэкджека.
type Sessions struct {
	mu        sync.Mutex
	crash     map[string]*CrashGame
	blackjack map[string]*BlackjackGame
}

// NewSessions создаёт пустой реестр.
func NewSessions() *Sessions {
	return &Sessions{
		crash:     map[string]*CrashGame{},
		blackjack: map[string]*BlackjackGame{},
	}
}

// PutCrash регистрирует партию crash.
func (s *Sessions) PutCrash(g *CrashGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crash[g.ID] = g
}

// Crash находит партию crash по идентификатору.
func (s *Sessions) Crash(id string) (*CrashGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.crash[id]
	return g, ok
}

// DropCrash удаляет завершённую партию crash.
func (s *Sessions) DropCrash(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.crash, id)
}

// PutBlackjack регистрирует партию блэкджека.
func (s *Sessions) PutBlackjack(g *BlackjackGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blackjack[g.ID] = g
}

// Blackjack находит партию блэкджека по идентификатору.
func (s *Sessions) Blackjack(id string) (*BlackjackGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.blackjack[id]
	return g, ok
}

// DropBlackjack удаляет завершённую партию блэкджека.
func (s *Sessions) DropBlackjack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blackjack, id)
}
