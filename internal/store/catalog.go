// catalog.go — read-only каталог предметов (items.json).
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Rarity — редкость предмета. Порядок важен: он определяет и цвет
// отображения, и какой предмет «круче» при флексе.
type Rarity string

// Редкости в порядке возрастания.
const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
	RarityCosmic    Rarity = "cosmic"
	RarityNull      Rarity = "null"
)

var rarityOrder = []Rarity{
	RarityCommon, RarityUncommon, RarityRare, RarityEpic,
	RarityLegendary, RarityMythic, RarityCosmic, RarityNull,
}

// Rank возвращает порядковый номер редкости (неизвестная — как common).
func (r Rarity) Rank() int {
	for i, known := range rarityOrder {
		if known == r {
			return i
		}
	}
	return 0
}

// Item — запись каталога: редкость и продажная цена.
type Item struct {
	Rarity Rarity `json:"rarity"`
	Value  int64  `json:"value"`
}

// Catalog — каталог предметов, неизменяемый после загрузки.
type Catalog struct {
	items    map[string]Item
	byRarity map[Rarity][]string
}

// LoadCatalog читает каталог из JSON-файла.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение каталога %s: %w", path, err)
	}

	items := map[string]Item{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("разбор каталога %s: %w", path, err)
	}
	return NewCatalog(items), nil
}

// NewCatalog строит каталог из готовой мапы (тесты, встроенные данные).
func NewCatalog(items map[string]Item) *Catalog {
	c := &Catalog{
		items:    items,
		byRarity: map[Rarity][]string{},
	}
	for name, item := range items {
		rarity := item.Rarity
		if rarity == "" {
			rarity = RarityCommon
		}
		c.byRarity[rarity] = append(c.byRarity[rarity], name)
	}
	// Детерминированный порядок внутри редкости — выборка по индексу
	// из rng тогда воспроизводима в тестах.
	for _, names := range c.byRarity {
		sort.Strings(names)
	}
	return c
}

// Get возвращает запись каталога по точному имени.
func (c *Catalog) Get(name string) (Item, bool) {
	item, ok := c.items[name]
	return item, ok
}

// FindFold ищет предмет без учёта регистра — так вводят имена в !sell.
func (c *Catalog) FindFold(name string) (string, Item, bool) {
	if item, ok := c.items[name]; ok {
		return name, item, true
	}
	for actual, item := range c.items {
		if strings.EqualFold(actual, name) {
			return actual, item, true
		}
	}
	return "", Item{}, false
}

// ByRarity возвращает имена предметов заданной редкости (отсортированы).
func (c *Catalog) ByRarity(r Rarity) []string {
	return c.byRarity[r]
}

// ByRarities собирает предметы нескольких редкостей в один пул.
func (c *Catalog) ByRarities(rs ...Rarity) []string {
	var out []string
	for _, r := range rs {
		out = append(out, c.byRarity[r]...)
	}
	return out
}

// Len — размер каталога.
func (c *Catalog) Len() int {
	return len(c.items)
}
