package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		BotToken:             "123:abc",
		TreasuryUserID:       "BANK",
		RollCost:             500,
		StorageBackend:       StorageJSON,
		UpdateTimeoutSeconds: 30,
		MaxInflight:          32,
	}
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateStorageBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "redis"
	assert.Error(t, cfg.Validate())

	cfg.StorageBackend = StoragePostgres
	assert.Error(t, cfg.Validate(), "postgres без пароля")

	cfg.DBPassword = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateTreasury(t *testing.T) {
	cfg := validConfig()
	cfg.TreasuryUserID = ""
	assert.Error(t, cfg.Validate())
}

func TestAdminIDList(t *testing.T) {
	cfg := validConfig()

	ids, err := cfg.AdminIDList()
	require.NoError(t, err)
	assert.Empty(t, ids)

	cfg.AdminIDs = "123, 456,789"
	ids, err = cfg.AdminIDList()
	require.NoError(t, err)
	assert.Equal(t, []int64{123, 456, 789}, ids)

	cfg.AdminIDs = "123,abc"
	_, err = cfg.AdminIDList()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DBHost = "db"
	cfg.DBPort = 5433
	cfg.DBUser = "bot"
	cfg.DBPassword = "pw"
	cfg.DBName = "economy"
	cfg.DBSSLMode = "disable"

	assert.Equal(t, "postgres://bot:pw@db:5433/economy?sslmode=disable", cfg.DatabaseDSN())
}
