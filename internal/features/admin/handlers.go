// handlers.go — команды администратора: /login, !givecoins, !giveitem, !purge.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/economy-bot/internal/common"
)

// maxPurge ограничивает !purge — Telegram всё равно не даст удалять
// сообщения старше 48 часов, большие числа означают опечатку.
const maxPurge = 100

// Handler связывает админ-команды с сервисом.
type Handler struct {
	svc    *Service
	sender common.Sender
}

// NewHandler создаёт обработчик админ-команд.
func NewHandler(svc *Service, sender common.Sender) *Handler {
	return &Handler{svc: svc, sender: sender}
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	if _, err := h.sender.Send(common.ReplyTo(msg, text)); err != nil {
		log.WithError(err).Warn("не удалось отправить ответ")
	}
}

// HandleLogin — команда /login <password>, принимается только в личке:
// пароль в групповом чате увидят все.
func (h *Handler) HandleLogin(_ context.Context, msg *tgbotapi.Message, args []string) {
	if !msg.Chat.IsPrivate() {
		h.reply(msg, "🔒 Send /login in a private message, not in the group chat.")
		return
	}
	if len(args) != 1 {
		h.reply(msg, "Usage: /login <password>")
		return
	}

	err := h.svc.Login(msg.From.ID, args[0])
	switch {
	case errors.Is(err, ErrNotAdmin):
		h.reply(msg, "⛔ You are not on the admin list.")
	case errors.Is(err, ErrTooManyAttempts):
		h.reply(msg, "⛔ Too many failed attempts. Try again in an hour.")
	case errors.Is(err, ErrWrongPassword):
		h.reply(msg, "❌ Wrong password.")
	case err != nil:
		log.WithError(err).Error("ошибка входа в админку")
		h.reply(msg, "Something went wrong, try again later.")
	default:
		h.reply(msg, fmt.Sprintf("✅ Logged in. Session is valid for %s.", SessionTTL))
	}
}

// HandleGiveCoins — команда !givecoins <user_id> <amount>.
func (h *Handler) HandleGiveCoins(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) != 2 {
		h.reply(msg, "Usage: !givecoins <user_id> <amount>")
		return
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount == 0 {
		h.reply(msg, "Amount must be a non-zero number.")
		return
	}

	rec, err := h.svc.GiveCoins(ctx, msg.From.ID, args[0], amount)
	if h.replyAuthError(msg, err) {
		return
	}
	if err != nil {
		log.WithError(err).Error("ошибка админ-начисления")
		h.reply(msg, "Something went wrong, try again later.")
		return
	}
	h.reply(msg, fmt.Sprintf("✅ Balance of %s is now %s.", args[0], common.FormatCoins(rec.Money)))
}

// HandleGiveItem — команда !giveitem <user_id> <item> [count].
// Имя предмета может содержать пробелы, количество — последний аргумент,
// если он число.
func (h *Handler) HandleGiveItem(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		h.reply(msg, "Usage: !giveitem <user_id> <item> [count]")
		return
	}
	target := args[0]
	rest := args[1:]

	count := int64(1)
	if len(rest) > 1 {
		if n, err := strconv.ParseInt(rest[len(rest)-1], 10, 64); err == nil {
			count = n
			rest = rest[:len(rest)-1]
		}
	}
	item := strings.Join(rest, " ")
	if count <= 0 {
		h.reply(msg, "Count must be positive.")
		return
	}

	total, err := h.svc.GiveItem(ctx, msg.From.ID, target, item, count)
	if h.replyAuthError(msg, err) {
		return
	}
	if err != nil {
		log.WithError(err).Error("ошибка админ-выдачи предмета")
		h.reply(msg, "Something went wrong, try again later.")
		return
	}
	h.reply(msg, fmt.Sprintf("✅ Gave %d× %s to %s (now has %d).", count, item, target, total))
}

// HandlePurge — команда !purge <n>: удаляет последние n сообщений чата.
// Удаление best-effort: сообщения старше 48 часов и чужие сообщения без
// прав администратора у бота Telegram удалить не даст.
func (h *Handler) HandlePurge(_ context.Context, msg *tgbotapi.Message, args []string) {
	if err := h.svc.Authorize(msg.From.ID); h.replyAuthError(msg, err) {
		return
	}
	if len(args) != 1 {
		h.reply(msg, "Usage: !purge <count>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > maxPurge {
		h.reply(msg, fmt.Sprintf("Count must be between 1 and %d.", maxPurge))
		return
	}

	// ID сообщений в чате монотонны: идём вниз от команды. Сама команда
	// тоже удаляется и в счёт не входит.
	deleted := 0
	for id := msg.MessageID; id > msg.MessageID-n-1 && id > 0; id-- {
		if _, err := h.sender.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, id)); err != nil {
			log.WithError(err).WithField("message_id", id).Debug("сообщение не удалено")
			continue
		}
		if id != msg.MessageID {
			deleted++
		}
	}

	note := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("🧹 Deleted %d message(s).", deleted))
	if _, err := h.sender.Send(note); err != nil {
		log.WithError(err).Warn("не удалось отправить ответ")
	}
}

// replyAuthError обрабатывает общие ошибки авторизации. Возвращает true,
// если ошибка была ошибкой авторизации и ответ уже отправлен.
func (h *Handler) replyAuthError(msg *tgbotapi.Message, err error) bool {
	switch {
	case errors.Is(err, ErrNotAdmin):
		h.reply(msg, "⛔ You are not on the admin list.")
		return true
	case errors.Is(err, ErrNoSession):
		h.reply(msg, "🔑 Log in first: send /login <password> in a private message.")
		return true
	}
	return false
}
