// source.go — потокобезопасный источник случайности. Хэндлеры бота
// работают из нескольких горутин, а *rand.Rand сам по себе не
// потокобезопасен.
package rewards

import (
	"math/rand"
	"sync"
	"time"
)

// Source выдаёт случайные значения под общим мьютексом. Сид
// пробрасывается снаружи, тесты передают фиксированный.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource создаёт источник с заданным сидом.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSource — источник, засеянный текущим временем.
func NewTimeSource() *Source {
	return NewSource(time.Now().UnixNano())
}

// Do выполняет fn с захваченным rng. Всё обращение к rng — только
// внутри fn, наружу *rand.Rand не утекает.
func (s *Source) Do(fn func(rng *rand.Rand)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.rng)
}

// IntN — случайное число из [0, n).
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Int64Between — случайное число из [low, high] включительно.
func (s *Source) Int64Between(low, high int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return low + s.rng.Int63n(high-low+1)
}

// Float64 — случайное число из [0, 1).
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Float64Between — случайное число из [low, high).
func (s *Source) Float64Between(low, high float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return low + s.rng.Float64()*(high-low)
}

// Percent — случайное число из [0, 100), удобно для каскадов шансов.
func (s *Source) Percent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() * 100
}

// Shuffle перемешивает n элементов через swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(n, swap)
}
