// handlers.go — команды экономики: !daily, !bank, !give, !leaderboard.
package economy

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

// Handler связывает команды чата с сервисом экономики.
type Handler struct {
	svc    *Service
	sender common.Sender
}

// NewHandler создаёт обработчик команд экономики.
func NewHandler(svc *Service, sender common.Sender) *Handler {
	return &Handler{svc: svc, sender: sender}
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	if _, err := h.sender.Send(common.ReplyTo(msg, text)); err != nil {
		log.WithError(err).Warn("не удалось отправить ответ")
	}
}

// HandleDaily — команда !daily: ежедневная награда.
func (h *Handler) HandleDaily(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	userID := common.UserKey(msg.From.ID)

	res, err := h.svc.Daily(ctx, userID)
	switch {
	case errors.Is(err, common.ErrOnCooldown):
		h.reply(msg, fmt.Sprintf("⏳ Daily reward is on cooldown. Come back in %s.",
			common.FormatCooldown(res.Remaining)))
		return
	case err != nil:
		log.WithError(err).WithField("user_id", userID).Error("ошибка выдачи daily")
		h.reply(msg, "Something went wrong, try again later.")
		return
	}

	text := fmt.Sprintf("🎁 Daily reward: %s and +%d XP!", common.FormatCoins(res.Coins), res.XP)
	if res.LeveledUp {
		text += fmt.Sprintf("\n🎉 Level up! You are now level %d.", res.NewLevel)
	}
	h.reply(msg, text)
}

// HandleBank — команда !bank [deposit|withdraw <amount>]: банк.
func (h *Handler) HandleBank(ctx context.Context, msg *tgbotapi.Message, args []string) {
	userID := common.UserKey(msg.From.ID)

	if len(args) == 0 {
		rec, err := h.svc.repo.GetOrCreate(ctx, userID)
		if err != nil {
			log.WithError(err).Error("ошибка чтения записи для !bank")
			h.reply(msg, "Something went wrong, try again later.")
			return
		}
		h.reply(msg, fmt.Sprintf("🏦 Bank: %s\n👛 Wallet: %s",
			common.FormatCoins(rec.Bank), common.FormatCoins(rec.Money)))
		return
	}

	if len(args) < 2 {
		h.reply(msg, "Usage: !bank deposit <amount> or !bank withdraw <amount>")
		return
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.reply(msg, "Amount must be a number.")
		return
	}

	switch strings.ToLower(args[0]) {
	case "deposit", "dep":
		err = h.svc.Deposit(ctx, userID, amount)
		if err == nil {
			h.reply(msg, fmt.Sprintf("🏦 Deposited %s.", common.FormatCoins(amount)))
			return
		}
	case "withdraw", "with":
		err = h.svc.Withdraw(ctx, userID, amount)
		if err == nil {
			h.reply(msg, fmt.Sprintf("👛 Withdrew %s.", common.FormatCoins(amount)))
			return
		}
	default:
		h.reply(msg, "Usage: !bank deposit <amount> or !bank withdraw <amount>")
		return
	}

	switch {
	case errors.Is(err, common.ErrInvalidAmount):
		h.reply(msg, "Amount must be positive.")
	case errors.Is(err, common.ErrInsufficientBalance):
		h.reply(msg, "Not enough coins in your wallet.")
	case errors.Is(err, common.ErrInsufficientBank):
		h.reply(msg, "Not enough coins in your bank.")
	default:
		log.WithError(err).Error("ошибка операции с банком")
		h.reply(msg, "Something went wrong, try again later.")
	}
}

// HandleGive — команда !give <amount> ответом на сообщение получателя,
// либо !give <user_id> <amount>.
func (h *Handler) HandleGive(ctx context.Context, msg *tgbotapi.Message, args []string) {
	var toID string
	switch {
	case len(args) == 1 && msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil:
		toID = common.UserKey(msg.ReplyToMessage.From.ID)
	case len(args) == 2:
		toID = args[0]
		args = args[1:]
	default:
		h.reply(msg, "Usage: !give <amount> (as a reply) or !give <user_id> <amount>")
		return
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.reply(msg, "Amount must be a number.")
		return
	}

	fromID := common.UserKey(msg.From.ID)

	err = h.svc.Give(ctx, fromID, toID, amount)
	switch {
	case errors.Is(err, common.ErrInvalidAmount):
		h.reply(msg, "Amount must be positive.")
	case errors.Is(err, common.ErrSelfTransfer):
		h.reply(msg, "You cannot give coins to yourself.")
	case errors.Is(err, common.ErrInsufficientBalance):
		h.reply(msg, "Not enough coins.")
	case err != nil:
		log.WithError(err).Error("ошибка перевода монет")
		h.reply(msg, "Something went wrong, try again later.")
	default:
		recipient := toID
		if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
			recipient = common.DisplayName(msg.ReplyToMessage.From)
		}
		h.reply(msg, fmt.Sprintf("💸 %s sent %s to %s.",
			common.DisplayName(msg.From), common.FormatCoins(amount), recipient))
	}
}

// HandleLeaderboard — команда !leaderboard [money|level|bank|total].
func (h *Handler) HandleLeaderboard(ctx context.Context, msg *tgbotapi.Message, args []string) {
	kind := BoardMoney
	if len(args) > 0 {
		kind = strings.ToLower(args[0])
	}
	switch kind {
	case BoardMoney, BoardLevel, BoardBank, BoardTotal:
	default:
		h.reply(msg, "Usage: !leaderboard [money|level|bank|total]")
		return
	}

	entries, err := h.svc.Leaderboard(ctx, kind, 10)
	if err != nil {
		log.WithError(err).Error("ошибка построения лидерборда")
		h.reply(msg, "Something went wrong, try again later.")
		return
	}
	if len(entries) == 0 {
		h.reply(msg, "Leaderboard is empty.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Leaderboard (%s):\n", kind)
	medals := []string{"🥇", "🥈", "🥉"}
	for i, e := range entries {
		prefix := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		if kind == BoardLevel {
			fmt.Fprintf(&b, "%s %s — level %d\n", prefix, e.UserID, e.Score)
		} else {
			fmt.Fprintf(&b, "%s %s — %s\n", prefix, e.UserID, common.FormatCoins(e.Score))
		}
	}
	h.reply(msg, b.String())
}
