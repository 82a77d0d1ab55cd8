// lotteryhist.go — файл частоты выигрышных лотерейных номеров.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
)

// LotteryHistory ведёт счётчик «сколько раз выпадал номер N среди
// выигрышных». Формат файла: {"12": 3, "34": 1, ...}.
type LotteryHistory struct {
	mu   sync.Mutex
	path string
}

// NewLotteryHistory создаёт историю поверх JSON-файла.
func NewLotteryHistory(path string) *LotteryHistory {
	return &LotteryHistory{path: path}
}

// Path возвращает путь к файлу истории (нужен бэкапу).
func (h *LotteryHistory) Path() string {
	return h.path
}

// Record инкрементирует счётчики для выпавших номеров.
func (h *LotteryHistory) Record(numbers []int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	counts, err := h.load()
	if err != nil {
		return err
	}
	for _, n := range numbers {
		counts[strconv.Itoa(n)]++
	}
	return h.save(counts)
}

// Counts возвращает копию таблицы частот.
func (h *LotteryHistory) Counts() (map[string]int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

// Top возвращает n самых частых номеров в формате "номер: k раз".
func (h *LotteryHistory) Top(n int) ([]string, error) {
	counts, err := h.Counts()
	if err != nil {
		return nil, err
	}
	type pair struct {
		num   string
		count int64
	}
	pairs := make([]pair, 0, len(counts))
	for num, count := range counts {
		pairs = append(pairs, pair{num, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].num < pairs[j].num
	})
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]string, 0, n)
	for _, p := range pairs[:n] {
		out = append(out, fmt.Sprintf("%s: %d", p.num, p.count))
	}
	return out, nil
}

func (h *LotteryHistory) load() (map[string]int64, error) {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение истории лотереи: %w", err)
	}
	counts := map[string]int64{}
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("разбор истории лотереи: %w", err)
	}
	return counts, nil
}

func (h *LotteryHistory) save(counts map[string]int64) error {
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация истории лотереи: %w", err)
	}
	tmp := h.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("создание каталога истории: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("запись истории лотереи: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return fmt.Errorf("замена файла истории: %w", err)
	}
	return nil
}
