// postgres.go — бэкенд таблицы пользователей в PostgreSQL.
//
// Таблица хранится как строки (user_id, record JSONB), но контракт остаётся
// «всё или ничего»: LoadAll вычитывает все строки, SaveAll перезаписывает
// их одной транзакцией. Никаких частичных обновлений — семантика файла.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PoolSettings — параметры пула соединений (берутся из config).
type PoolSettings struct {
	DSN      string
	MaxConns int32
	MinConns int32
}

// NewPool создаёт пул соединений к PostgreSQL и проверяет доступность базы.
func NewPool(ctx context.Context, set PoolSettings) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(set.DSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}

	// Настройки пула соединений
	poolConfig.MaxConns = set.MaxConns
	poolConfig.MinConns = set.MinConns
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("база данных недоступна: %w", err)
	}

	log.Info("Подключение к PostgreSQL установлено")
	return pool, nil
}

// PostgresStore — Store поверх pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore создаёт бэкенд и применяет миграцию схемы.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("миграция user_records: %w", err)
	}
	return s, nil
}

// migrate создаёт таблицы, если их ещё нет. SQL встроен в код для
// упрощения деплоя, по образцу остальных наших ботов.
func (s *PostgresStore) migrate(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка создания таблицы миграций: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = 1)",
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("ошибка проверки миграции: %w", err)
	}
	if !exists {
		_, err = tx.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS user_records (
				user_id TEXT PRIMARY KEY,
				record JSONB NOT NULL,
				updated_at TIMESTAMP DEFAULT NOW()
			)
		`)
		if err != nil {
			return fmt.Errorf("ошибка создания user_records: %w", err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES (1)",
		); err != nil {
			return fmt.Errorf("ошибка записи версии миграции: %w", err)
		}
		log.Info("Миграция 1 применена")
	}

	return tx.Commit(ctx)
}

// LoadAll вычитывает всю таблицу.
func (s *PostgresStore) LoadAll(ctx context.Context) (UserTable, error) {
	rows, err := s.pool.Query(ctx, "SELECT user_id, record FROM user_records")
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения user_records: %w", err)
	}
	defer rows.Close()

	table := UserTable{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		var rec UserRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("разбор записи %s: %w", id, err)
		}
		table[id] = &rec
	}
	return table, rows.Err()
}

// SaveAll перезаписывает таблицу одной транзакцией: upsert каждой записи
// плюс удаление строк, которых в таблице больше нет.
func (s *PostgresStore) SaveAll(ctx context.Context, table UserTable) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]string, 0, len(table))
	for id, rec := range table {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("сериализация записи %s: %w", id, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO user_records (user_id, record, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (user_id) DO UPDATE SET record = $2, updated_at = NOW()
		`, id, raw)
		if err != nil {
			return fmt.Errorf("запись %s: %w", id, err)
		}
		ids = append(ids, id)
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM user_records WHERE NOT (user_id = ANY($1))", ids,
	); err != nil {
		return fmt.Errorf("очистка удалённых записей: %w", err)
	}

	return tx.Commit(ctx)
}
