// Package items — предметы: роллы, инвентарь, продажа, магазин и
// мистери-боксы. defs.go содержит статические таблицы магазина и
// боксов — цены и таблицы наград воспроизводят исторический баланс.
package items

import "serotonyl.ru/economy-bot/internal/store"

// Виды покупок в магазине.
const (
	shopKindRole  = "role"
	shopKindCoins = "coins"
	shopKindXP    = "xp"
)

// ShopItem — позиция магазина.
type ShopItem struct {
	ID          string
	Name        string
	Price       int64
	Kind        string
	RoleName    string // для Kind == role
	CoinsBonus  int64  // для Kind == coins
	XPBonus     int64  // для Kind == xp
	Description string
}

// Порядок позиций фиксирован для вывода !shop.
var shopItems = []ShopItem{
	{ID: "premium", Name: "🌟 Premium Role", Price: 5_000, Kind: shopKindRole, RoleName: "Premium", Description: "Get the premium role!"},
	{ID: "vip", Name: "💎 VIP Role", Price: 100_000, Kind: shopKindRole, RoleName: "VIP", Description: "Get the VIP role!"},
	{ID: "legend", Name: "🏆 Legend Role", Price: 25_000_000, Kind: shopKindRole, RoleName: "Legend", Description: "Get the legendary role!"},
	{ID: "elite", Name: "👑 Elite Role", Price: 1_000_000_000_000, Kind: shopKindRole, RoleName: "Elite", Description: "For the ultra-wealthy! Elite status role!"},
	{ID: "supreme", Name: "⭐ Supreme Role", Price: 1_000_000_000_000_000_000, Kind: shopKindRole, RoleName: "Supreme", Description: "The ultimate achievement! Supreme overlord status!"},
	{ID: "daily_coins", Name: "💰 Daily Coins Boost", Price: 300, Kind: shopKindCoins, CoinsBonus: 50, Description: "Get 50 bonus coins! (instant)"},
	{ID: "xp_boost", Name: "⚡ XP Boost", Price: 2_000, Kind: shopKindXP, XPBonus: 100, Description: "Get 100 bonus XP! (instant)"},
}

// ShopItemByID ищет позицию магазина.
func ShopItemByID(id string) (ShopItem, bool) {
	for _, item := range shopItems {
		if item.ID == id {
			return item, true
		}
	}
	return ShopItem{}, false
}

// CoinRange — поддиапазон монетной награды бокса.
type CoinRange struct {
	Min, Max int64
}

// MysteryBox — ярус мистери-бокса: цена и двухэтапная таблица наград.
type MysteryBox struct {
	ID          string
	Name        string
	Price       int64
	Description string
	CoinChance  int // процент монетного исхода, остальное — предмет
	CoinRanges  []CoinRange
	Rarities    []store.Rarity
}

// Порядок ярусов фиксирован для вывода !boxes.
var mysteryBoxes = []MysteryBox{
	{
		ID: "basic", Name: "📦 Basic Mystery Box", Price: 10_000,
		Description: "A simple box with modest rewards",
		CoinChance:  70,
		CoinRanges:  []CoinRange{{100, 500}, {501, 1_000}, {1_001, 2_000}},
		Rarities:    []store.Rarity{store.RarityCommon, store.RarityUncommon},
	},
	{
		ID: "silver", Name: "🥈 Silver Mystery Box", Price: 500_000,
		Description: "A shiny box with better rewards",
		CoinChance:  60,
		CoinRanges:  []CoinRange{{1_000, 3_000}, {3_001, 7_000}, {7_001, 1_500_000}},
		Rarities:    []store.Rarity{store.RarityUncommon, store.RarityRare},
	},
	{
		ID: "gold", Name: "🥇 Gold Mystery Box", Price: 25_000_000,
		Description: "A golden box with valuable treasures",
		CoinChance:  50,
		CoinRanges:  []CoinRange{{5_000, 15_000}, {15_001, 40_000}, {40_001, 100_000_000}},
		Rarities:    []store.Rarity{store.RarityRare, store.RarityEpic},
	},
	{
		ID: "diamond", Name: "💎 Diamond Mystery Box", Price: 1_000_000_000,
		Description: "A sparkling box with premium rewards",
		CoinChance:  60,
		CoinRanges:  []CoinRange{{25_000, 75_000}, {75_001, 200_000}, {200_001, 5_000_000_000}},
		Rarities:    []store.Rarity{store.RarityEpic, store.RarityLegendary},
	},
	{
		ID: "legendary", Name: "🌟 Legendary Mystery Box", Price: 10_000_000_000,
		Description: "The ultimate mystery box with incredible rewards",
		CoinChance:  80,
		CoinRanges:  []CoinRange{{100_000, 500_000}, {500_001, 2_000_000}, {2_000_001, 100_000_000_000}},
		Rarities:    []store.Rarity{store.RarityEpic, store.RarityLegendary},
	},
	{
		ID: "cosmic", Name: "🌌 Cosmic Mystery Box", Price: 1_000_000_000_000_000,
		Description: "A box containing the essence of the universe itself",
		CoinChance:  99,
		CoinRanges:  []CoinRange{{1_000_000, 10_000_000}, {10_000_001, 50_000_000}, {50_000_001, 5_000_000_000_000_000}},
		Rarities:    []store.Rarity{store.RarityCosmic},
	},
}

// BoxByID ищет ярус бокса.
func BoxByID(id string) (MysteryBox, bool) {
	for _, box := range mysteryBoxes {
		if box.ID == id {
			return box, true
		}
	}
	return MysteryBox{}, false
}

// Boxes возвращает все ярусы в порядке вывода.
func Boxes() []MysteryBox {
	return mysteryBoxes
}

// Shop возвращает все позиции магазина в порядке вывода.
func Shop() []ShopItem {
	return shopItems
}
