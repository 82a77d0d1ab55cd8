// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт хранилище, сервисы, обработчики
// и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/economy-bot/internal/bot"
	"serotonyl.ru/economy-bot/internal/config"
	"serotonyl.ru/economy-bot/internal/features/admin"
	"serotonyl.ru/economy-bot/internal/features/casino"
	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/features/items"
	"serotonyl.ru/economy-bot/internal/features/lottery"
	"serotonyl.ru/economy-bot/internal/features/mining"
	"serotonyl.ru/economy-bot/internal/features/progress"
	"serotonyl.ru/economy-bot/internal/jobs"
	"serotonyl.ru/economy-bot/internal/rewards"
	"serotonyl.ru/economy-bot/internal/store"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	BotAPI    *tgbotapi.BotAPI

	cfg *config.Config
	db  *pgxpool.Pool // nil при файловом бэкенде
}

// New создаёт и инициализирует приложение.
// Порядок важен: хранилище → сервисы → обработчики → бот.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	// === 1. Хранилище ===
	backend, err := a.newStore(ctx)
	if err != nil {
		return nil, err
	}
	repo := store.NewRepository(backend)

	catalog, err := store.LoadCatalog(cfg.ItemsPath())
	if err != nil {
		return nil, fmt.Errorf("каталог предметов: %w", err)
	}
	history := store.NewLotteryHistory(cfg.LotteryPath())

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)
	a.BotAPI = botAPI

	adminIDs, err := cfg.AdminIDList()
	if err != nil {
		return nil, fmt.Errorf("разбор ADMIN_IDS: %w", err)
	}

	// === 3. Сервисы ===
	rng := rewards.NewTimeSource()
	economyService := economy.NewService(repo, rng, cfg.TreasuryUserID)
	progressService := progress.NewService(repo, rng)
	itemsService := items.NewService(repo, catalog, rng,
		economyService, items.NewRecordRoleGranter(repo), cfg.RollCost)
	casinoService := casino.NewService(repo, rng, economyService)
	lotteryService := lottery.NewService(rng, economyService, history)
	miningService := mining.NewService(catalog, rng, economyService, itemsService)
	adminService := admin.NewService(economyService, itemsService, cfg.AdminPasswordHash, adminIDs)

	// === 4. Обработчики ===
	handlers := bot.Handlers{
		Economy:  economy.NewHandler(economyService, botAPI),
		Progress: progress.NewHandler(progressService, botAPI),
		Items:    items.NewHandler(itemsService, botAPI),
		Casino:   casino.NewHandler(casinoService, botAPI),
		Lottery:  lottery.NewHandler(lotteryService, botAPI),
		Mining:   mining.NewHandler(miningService, botAPI),
		Admin:    admin.NewHandler(adminService, botAPI),
	}

	// === 5. Бот и планировщик ===
	a.Bot = bot.New(botAPI, cfg, handlers)
	a.Scheduler = jobs.NewScheduler(repo, history, cfg.BackupDir)

	return a, nil
}

// newStore выбирает бэкенд таблицы пользователей по STORAGE_BACKEND.
func (a *App) newStore(ctx context.Context) (store.Store, error) {
	switch a.cfg.StorageBackend {
	case config.StorageJSON:
		log.WithField("path", a.cfg.UsersPath()).Info("Хранилище: JSON-файл")
		return store.NewJSONFileStore(a.cfg.UsersPath()), nil

	case config.StoragePostgres:
		pool, err := store.NewPool(ctx, store.PoolSettings{
			DSN:      a.cfg.DatabaseDSN(),
			MaxConns: a.cfg.DBMaxConns,
			MinConns: 1,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		a.db = pool
		pg, err := store.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("Хранилище: PostgreSQL")
		return pg, nil

	case config.StorageMemory:
		log.Warn("Хранилище: память — данные пропадут при рестарте")
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("неизвестный бэкенд хранилища: %s", a.cfg.StorageBackend)
}

// Run запускает планировщик и polling. Блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	if err := a.Scheduler.Start(ctx, a.cfg.BackupCron); err != nil {
		return err
	}
	a.Bot.Start(ctx)
	return nil
}

// Shutdown аккуратно останавливает фоновые компоненты.
func (a *App) Shutdown() {
	a.Scheduler.Stop()
	if a.db != nil {
		a.db.Close()
		log.Info("Пул PostgreSQL закрыт")
	}
}
