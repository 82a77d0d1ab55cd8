// Package common содержит общие утилиты, используемые во всём проекте:
// форматирование чисел и сумм, работа с временем кулдаунов.
package common

import (
	"fmt"
	"time"
)

// FormatNumber форматирует число с разделителями тысяч (запятыми).
// Пример: FormatNumber(2350) → "2,350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	// Рекурсивно добавляем разделители
	rest := n / 1000
	last := n % 1000
	return fmt.Sprintf("%s,%03d", FormatNumber(rest), last)
}

// FormatCoins форматирует сумму в читабельную строку.
// Пример: FormatCoins(150) → "150 coins"
func FormatCoins(n int64) string {
	return FormatNumber(n) + " coins"
}

// FormatCoinsSigned добавляет знак «+» к положительным суммам.
//
// Примеры:
//
//	FormatCoinsSigned(100) → "+100 coins"
//	FormatCoinsSigned(-50) → "-50 coins"
func FormatCoinsSigned(n int64) string {
	if n >= 0 {
		return "+" + FormatCoins(n)
	}
	return FormatCoins(n)
}

// FormatCooldown форматирует остаток кулдауна в виде "5h 42m".
// Используется командой !daily.
func FormatCooldown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}
