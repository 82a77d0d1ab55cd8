// Package store реализует хранилище состояния бота: таблицу пользователей,
// read-only каталог предметов и историю лотерейных номеров.
// record.go описывает запись пользователя и её значения по умолчанию.
package store

import "math"

// UserRecord — плоская запись пользователя, ключ — строковый ID из Telegram.
// Формат JSON совместим с историческим users.json, поэтому имена полей
// менять нельзя.
type UserRecord struct {
	Money        int64            `json:"money"`        // Монеты в кошельке
	XP           int64            `json:"xp"`           // Суммарный опыт
	Level        int              `json:"level"`        // Производное: floor(sqrt(xp/100))+1
	Inventory    map[string]int64 `json:"inventory"`    // Предмет → количество (всегда > 0)
	LastDaily    int64            `json:"last_daily"`   // Unix-время последнего !daily
	Bank         int64            `json:"bank"`         // Монеты в банке
	Achievements []string         `json:"achievements"` // ID полученных ачивок
	Luck         float64          `json:"luck"`         // Бонус удачи в процентах (0 = нет)
	MoneyBoost   float64          `json:"money_boost"`  // Множитель начислений (нейтральное значение 1.0)
	Prestige     int              `json:"prestige"`     // Уровень престижа
	Roles        []string         `json:"roles"`        // Купленные в магазине роли
}

// NewUserRecord возвращает запись с дефолтами для нового пользователя.
// Начальный капитал — 100 монет, множитель начислений нейтральный (1.0):
// нулевой множитель обнулял бы все начисления.
func NewUserRecord() *UserRecord {
	return &UserRecord{
		Money:        100,
		XP:           0,
		Level:        1,
		Inventory:    map[string]int64{},
		LastDaily:    0,
		Bank:         0,
		Achievements: []string{},
		Luck:         0,
		MoneyBoost:   1.0,
		Prestige:     0,
		Roles:        []string{},
	}
}

// Normalize дозаполняет отсутствующие поля у записей, сохранённых старыми
// версиями бота. Существующие данные не трогает. Возвращает true, если
// что-то пришлось дозаполнить (тогда таблицу нужно пересохранить).
func (u *UserRecord) Normalize() bool {
	changed := false
	if u.Inventory == nil {
		u.Inventory = map[string]int64{}
		changed = true
	}
	if u.Achievements == nil {
		u.Achievements = []string{}
		changed = true
	}
	if u.Roles == nil {
		u.Roles = []string{}
		changed = true
	}
	if u.Level < 1 {
		u.Level = 1
		changed = true
	}
	// Старые записи хранили money_boost как 0-based бонус; нейтральным
	// значением выбран множитель 1.0.
	if u.MoneyBoost == 0 {
		u.MoneyBoost = 1.0
		changed = true
	}
	return changed
}

// LevelFromXP вычисляет уровень по суммарному опыту:
// floor(sqrt(xp/100)) + 1. Уровень никогда не ниже 1.
func LevelFromXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(math.Sqrt(float64(xp)/100)) + 1
}

// AddXP начисляет опыт и пересчитывает уровень. Возвращает true, если
// уровень вырос (повод для поздравления в чате).
func (u *UserRecord) AddXP(n int64) bool {
	if n <= 0 {
		return false
	}
	u.XP += n
	newLevel := LevelFromXP(u.XP)
	if newLevel > u.Level {
		u.Level = newLevel
		return true
	}
	return false
}

// TotalLuck возвращает суммарную удачу: собственный бонус плюс 10% за
// каждый уровень престижа.
func (u *UserRecord) TotalLuck() float64 {
	return u.Luck + float64(u.Prestige)*10
}

// NetWorth — суммарное состояние (кошелёк + банк).
func (u *UserRecord) NetWorth() int64 {
	return u.Money + u.Bank
}

// HasRole сообщает, куплена ли роль.
func (u *UserRecord) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAchievement сообщает, открыта ли ачивка.
func (u *UserRecord) HasAchievement(id string) bool {
	for _, a := range u.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Clone делает глубокую копию записи. Нужно, чтобы хранилище в памяти
// не отдавало наружу ссылки на свои внутренние структуры.
func (u *UserRecord) Clone() *UserRecord {
	c := *u
	c.Inventory = make(map[string]int64, len(u.Inventory))
	for k, v := range u.Inventory {
		c.Inventory[k] = v
	}
	c.Achievements = append([]string(nil), u.Achievements...)
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

// UserTable — вся таблица пользователей целиком.
// Хранилище читает и пишет её только целиком: частичных операций нет,
// это осознанное ограничение исторического формата.
type UserTable map[string]*UserRecord

// Clone — глубокая копия таблицы.
func (t UserTable) Clone() UserTable {
	out := make(UserTable, len(t))
	for id, rec := range t {
		out[id] = rec.Clone()
	}
	return out
}
