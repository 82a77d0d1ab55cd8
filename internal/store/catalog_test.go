package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return NewCatalog(map[string]Item{
		"Rusty Sword":   {Rarity: RarityCommon, Value: 50},
		"Old Boot":      {Rarity: RarityCommon, Value: 10},
		"Iron Dagger":   {Rarity: RarityUncommon, Value: 250},
		"Excalibur":     {Rarity: RarityLegendary, Value: 250000},
		"Broken Amulet": {Value: 5}, // без редкости — считается common
	})
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"Excalibur": {"rarity": "legendary", "value": 250000}}`), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	item, ok := c.Get("Excalibur")
	require.True(t, ok)
	assert.Equal(t, RarityLegendary, item.Rarity)
	assert.Equal(t, int64(250000), item.Value)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFindFold(t *testing.T) {
	c := testCatalog()

	name, item, ok := c.FindFold("excalibur")
	require.True(t, ok)
	assert.Equal(t, "Excalibur", name, "возвращается каноническое имя")
	assert.Equal(t, int64(250000), item.Value)

	_, _, ok = c.FindFold("no such item")
	assert.False(t, ok)
}

func TestByRaritySortedPools(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, []string{"Broken Amulet", "Old Boot", "Rusty Sword"},
		c.ByRarity(RarityCommon), "пустая редкость трактуется как common, пул отсортирован")
	assert.Empty(t, c.ByRarity(RarityCosmic))

	pool := c.ByRarities(RarityUncommon, RarityLegendary)
	assert.Equal(t, []string{"Iron Dagger", "Excalibur"}, pool)
}

func TestRarityRank(t *testing.T) {
	assert.Equal(t, 0, RarityCommon.Rank())
	assert.Greater(t, RarityLegendary.Rank(), RarityEpic.Rank())
	assert.Greater(t, RarityNull.Rank(), RarityCosmic.Rank())
	assert.Equal(t, 0, Rarity("bogus").Rank(), "неизвестная редкость — как common")
}
