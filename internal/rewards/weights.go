// Package rewards — общий взвешенный генератор наград: таблицы
// весов, учёт удачи игрока и потокобезопасный источник случайности.
package rewards

import (
	"math/rand"

	"serotonyl.ru/economy-bot/internal/common"
)

// Weighted — одна строка таблицы весов.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// Pick выбирает элемент пропорционально весу. Нулевые и отрицательные
// веса не участвуют. Пустая (или полностью нулевая) таблица — ошибка.
func Pick[T any](rng *rand.Rand, table []Weighted[T]) (T, error) {
	var zero T
	var total float64
	for _, row := range table {
		if row.Weight > 0 {
			total += row.Weight
		}
	}
	if total <= 0 {
		return zero, common.ErrEmptyRewardPool
	}

	roll := rng.Float64() * total
	for _, row := range table {
		if row.Weight <= 0 {
			continue
		}
		roll -= row.Weight
		if roll < 0 {
			return row.Value, nil
		}
	}
	// Из-за плавающей точки roll может на волосок пережить цикл.
	for i := len(table) - 1; i >= 0; i-- {
		if table[i].Weight > 0 {
			return table[i].Value, nil
		}
	}
	return zero, common.ErrEmptyRewardPool
}

// PickOne — выбор из равновероятного пула строк.
func PickOne(rng *rand.Rand, pool []string) (string, error) {
	if len(pool) == 0 {
		return "", common.ErrEmptyRewardPool
	}
	return pool[rng.Intn(len(pool))], nil
}
