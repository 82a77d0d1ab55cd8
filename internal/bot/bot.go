// Package bot — главный модуль бота: polling, маршрутизация команд
// и раздача апдейтов обработчикам фич.
package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/economy-bot/internal/bot/filters"
	"serotonyl.ru/economy-bot/internal/bot/middleware"
	"serotonyl.ru/economy-bot/internal/config"
	"serotonyl.ru/economy-bot/internal/features/admin"
	"serotonyl.ru/economy-bot/internal/features/casino"
	"serotonyl.ru/economy-bot/internal/features/economy"
	"serotonyl.ru/economy-bot/internal/features/items"
	"serotonyl.ru/economy-bot/internal/features/lottery"
	"serotonyl.ru/economy-bot/internal/features/mining"
	"serotonyl.ru/economy-bot/internal/features/progress"
)

const helpText = `🎮 Economy bot commands:
!profile !daily !bank [deposit|withdraw <n>] !give <n> (reply) !leaderboard [money|level|bank|total]
!roll !inventory [page] !sell <item> !sellall !shop !boxes !buy <id>
!gamble <n> !coinflip <n> <heads|tails> !slots <n> !crash <n> !cards <n> !spin
!lottery <n1> <n2> <n3> <n4> !mine !achievements !prestige
Admins: /login <password> (DM), !givecoins, !giveitem, !purge`

// Handlers — обработчики всех фич, которые бот маршрутизирует.
type Handlers struct {
	Economy  *economy.Handler
	Progress *progress.Handler
	Items    *items.Handler
	Casino   *casino.Handler
	Lottery  *lottery.Handler
	Mining   *mining.Handler
	Admin    *admin.Handler
}

// Bot принимает апдейты Telegram и раздаёт их обработчикам.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter
	parser      *CommandParser
	handlers    Handlers

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт бота со всеми зависимостями.
func New(api *tgbotapi.BotAPI, cfg *config.Config, handlers Handlers) *Bot {
	maxInflight := cfg.MaxInflight
	if maxInflight <= 0 {
		maxInflight = 32
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		chatFilter:  filters.NewChatFilter(cfg.ChatID, api),
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute),
		parser:      NewCommandParser(api.Self.UserName),
		handlers:    handlers,
		inflight:    make(chan struct{}, maxInflight),
	}
}

// Start запускает polling и блокируется до отмены контекста.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.UpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}
			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		return
	}
	message := update.Message

	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(message) {
		return
	}
	if message.From != nil && !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if isCommand {
		b.routeCommand(ctx, message, cmd, args)
		return
	}

	// Обычный трёп в группе приносит пассивный опыт.
	if !message.Chat.IsPrivate() {
		b.handlers.Progress.OnPlainMessage(ctx, message)
	}
}

// handleCallback маршрутизирует нажатия inline-кнопок.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From != nil && !b.rateLimiter.Allow(cq.From.ID) {
		return
	}
	if b.handlers.Casino.HandleCallback(ctx, cq) {
		return
	}
	if b.handlers.Mining.HandleCallback(ctx, cq) {
		return
	}
	// Неизвестная кнопка: отвечаем пустым callback, чтобы убрать «часики».
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.WithError(err).Debug("не удалось ответить на callback")
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, msg *tgbotapi.Message, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help":
		b.sendMessage(msg.Chat.ID, helpText)

	// --- экономика ---
	case "daily":
		b.handlers.Economy.HandleDaily(ctx, msg, args)
	case "bank":
		b.handlers.Economy.HandleBank(ctx, msg, args)
	case "give":
		b.handlers.Economy.HandleGive(ctx, msg, args)
	case "leaderboard", "lb", "top":
		b.handlers.Economy.HandleLeaderboard(ctx, msg, args)

	// --- прогресс ---
	case "profile", "stats":
		b.handlers.Progress.HandleProfile(ctx, msg, args)
	case "achievements":
		b.handlers.Progress.HandleAchievements(ctx, msg, args)
	case "prestige":
		b.handlers.Progress.HandlePrestige(ctx, msg, args)

	// --- предметы и магазин ---
	case "roll":
		b.handlers.Items.HandleRoll(ctx, msg, args)
	case "inventory", "inv":
		b.handlers.Items.HandleInventory(ctx, msg, args)
	case "sell":
		b.handlers.Items.HandleSell(ctx, msg, args)
	case "sellall":
		b.handlers.Items.HandleSellAll(ctx, msg, args)
	case "shop":
		b.handlers.Items.HandleShop(ctx, msg, args)
	case "boxes":
		b.handlers.Items.HandleBoxes(ctx, msg, args)
	case "buy":
		b.handlers.Items.HandleBuy(ctx, msg, args)

	// --- казино ---
	case "gamble":
		b.handlers.Casino.HandleGamble(ctx, msg, args)
	case "coinflip", "flip":
		b.handlers.Casino.HandleCoinflip(ctx, msg, args)
	case "spin":
		b.handlers.Casino.HandleSpin(ctx, msg, args)
	case "slots":
		b.handlers.Casino.HandleSlots(ctx, msg, args)
	case "crash":
		b.handlers.Casino.HandleCrash(ctx, msg, args)
	case "cards", "blackjack", "bj":
		b.handlers.Casino.HandleCards(ctx, msg, args)

	// --- лотерея и шахта ---
	case "lottery":
		b.handlers.Lottery.HandleLottery(ctx, msg, args)
	case "mine":
		b.handlers.Mining.HandleMine(ctx, msg, args)

	// --- админ ---
	case "login":
		b.handlers.Admin.HandleLogin(ctx, msg, args)
	case "givecoins":
		b.handlers.Admin.HandleGiveCoins(ctx, msg, args)
	case "giveitem":
		b.handlers.Admin.HandleGiveItem(ctx, msg, args)
	case "purge":
		b.handlers.Admin.HandlePurge(ctx, msg, args)
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
