// Package config — конфигурация бота из переменных окружения.
package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Бэкенды хранилища.
const (
	StorageJSON     = "json"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config — все настройки приложения.
type Config struct {
	// Telegram.
	BotToken             string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	ChatID               int64  `envconfig:"CHAT_ID"`
	UpdateTimeoutSeconds int    `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"30"`
	MaxInflight          int    `envconfig:"BOT_MAX_INFLIGHT" default:"32"`

	// Экономика.
	TreasuryUserID string `envconfig:"TREASURY_USER_ID" default:"BANK"`
	RollCost       int64  `envconfig:"ROLL_COST" default:"500"`

	// Админка.
	AdminIDs          string `envconfig:"ADMIN_IDS"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	// Хранилище.
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"json"`
	DataDir        string `envconfig:"DATA_DIR" default:"data"`
	UsersFile      string `envconfig:"USERS_FILE" default:"users.json"`
	ItemsFile      string `envconfig:"ITEMS_FILE" default:"items.json"`
	LotteryFile    string `envconfig:"LOTTERY_FILE" default:"lottery_wins.json"`

	// PostgreSQL (при STORAGE_BACKEND=postgres).
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"economy"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"4"`

	// Логирование.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Ограничение частоты команд на пользователя.
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"20"`

	// Бэкап файлов данных.
	BackupCron string `envconfig:"BACKUP_CRON" default:"0 4 * * *"`
	BackupDir  string `envconfig:"BACKUP_DIR" default:"backups"`
}

// Load читает конфигурацию из окружения и валидирует её.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("чтение окружения: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageJSON, StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("неизвестный STORAGE_BACKEND %q (json|postgres|memory)", c.StorageBackend)
	}
	if c.StorageBackend == StoragePostgres && c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD обязателен при STORAGE_BACKEND=postgres")
	}
	if c.UpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть положительным")
	}
	if c.MaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть положительным")
	}
	if c.RollCost <= 0 {
		return fmt.Errorf("ROLL_COST должен быть положительным")
	}
	if c.TreasuryUserID == "" {
		return fmt.Errorf("TREASURY_USER_ID не может быть пустым")
	}
	return nil
}

// AdminIDList разбирает ADMIN_IDS из CSV в список идентификаторов.
func (c *Config) AdminIDList() ([]int64, error) {
	if strings.TrimSpace(c.AdminIDs) == "" {
		return nil, nil
	}
	parts := strings.Split(c.AdminIDs, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("разбор ADMIN_IDS: %w", err)
		}
		out = append(out, id)
	}
	return out, nil
}

// DatabaseDSN собирает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// UsersPath — полный путь к файлу пользователей.
func (c *Config) UsersPath() string {
	return filepath.Join(c.DataDir, c.UsersFile)
}

// ItemsPath — полный путь к каталогу предметов.
func (c *Config) ItemsPath() string {
	return filepath.Join(c.DataDir, c.ItemsFile)
}

// LotteryPath — полный путь к истории лотереи.
func (c *Config) LotteryPath() string {
	return filepath.Join(c.DataDir, c.LotteryFile)
}

// UpdateTimeout — таймаут long polling как Duration.
func (c *Config) UpdateTimeout() time.Duration {
	return time.Duration(c.UpdateTimeoutSeconds) * time.Second
}
