// rarity.go — базовые веса редкостей и их масштабирование удачей.
package rewards

import (
	"math/rand"

	"serotonyl.ru/economy-bot/internal/store"
)

// Базовые веса редкостей при обычном ролле.
var baseRarityWeights = []Weighted[store.Rarity]{
	{Value: store.RarityCommon, Weight: 60},
	{Value: store.RarityUncommon, Weight: 30},
	{Value: store.RarityRare, Weight: 9},
	{Value: store.RarityEpic, Weight: 1},
	{Value: store.RarityLegendary, Weight: 0.5},
}

// RarityWeights возвращает таблицу редкостей с учётом удачи:
// rare/epic/legendary умножаются на (1 + luck/100).
func RarityWeights(luck float64) []Weighted[store.Rarity] {
	factor := 1 + luck/100
	out := make([]Weighted[store.Rarity], len(baseRarityWeights))
	for i, row := range baseRarityWeights {
		out[i] = row
		switch row.Value {
		case store.RarityRare, store.RarityEpic, store.RarityLegendary:
			out[i].Weight = row.Weight * factor
		}
	}
	return out
}

// PickRarity выбирает редкость с учётом удачи игрока.
func PickRarity(rng *rand.Rand, luck float64) (store.Rarity, error) {
	return Pick(rng, RarityWeights(luck))
}
