// handlers.go — команды прогрессии: !profile, !achievements, !prestige,
// плюс пассивный опыт за обычные сообщения.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/economy-bot/internal/common"
)

// Handler связывает команды чата с сервисом прогрессии.
type Handler struct {
	svc    *Service
	sender common.Sender
}

// NewHandler создаёт обработчик команд прогрессии.
func NewHandler(svc *Service, sender common.Sender) *Handler {
	return &Handler{svc: svc, sender: sender}
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	if _, err := h.sender.Send(common.ReplyTo(msg, text)); err != nil {
		log.WithError(err).Warn("не удалось отправить ответ")
	}
}

// HandleProfile — команда !profile.
func (h *Handler) HandleProfile(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	userID := common.UserKey(msg.From.ID)

	rec, err := h.svc.Profile(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("ошибка чтения профиля")
		h.reply(msg, "Something went wrong, try again later.")
		return
	}

	var items int64
	for _, n := range rec.Inventory {
		items += n
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n", common.DisplayName(msg.From))
	fmt.Fprintf(&b, "💰 Wallet: %s\n", common.FormatCoins(rec.Money))
	fmt.Fprintf(&b, "🏦 Bank: %s\n", common.FormatCoins(rec.Bank))
	fmt.Fprintf(&b, "⭐ Level %d (%d XP, %d to next)\n", rec.Level, rec.XP, XPToNextLevel(rec))
	fmt.Fprintf(&b, "🎒 Items: %d\n", items)
	if rec.Prestige > 0 {
		fmt.Fprintf(&b, "🌟 Prestige %d\n", rec.Prestige)
	}
	if rec.TotalLuck() > 0 {
		fmt.Fprintf(&b, "🍀 Luck: +%.0f%%\n", rec.TotalLuck())
	}
	if rec.MoneyBoost > 1 {
		fmt.Fprintf(&b, "🚀 Money boost: x%.2f\n", rec.MoneyBoost)
	}
	h.reply(msg, b.String())
}

// HandleAchievements — команда !achievements.
func (h *Handler) HandleAchievements(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	userID := common.UserKey(msg.From.ID)

	statuses, newly, err := h.svc.Achievements(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("ошибка проверки ачивок")
		h.reply(msg, "Something went wrong, try again later.")
		return
	}

	var b strings.Builder
	b.WriteString("🏅 Achievements:\n")
	for _, st := range statuses {
		mark := "🔒"
		if st.Unlocked {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, st.Title)
	}
	if newly > 0 {
		fmt.Fprintf(&b, "\n🎉 %d new achievement(s) unlocked!", newly)
	}
	h.reply(msg, b.String())
}

// HandlePrestige — команда !prestige.
func (h *Handler) HandlePrestige(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	userID := common.UserKey(msg.From.ID)

	res, err := h.svc.Prestige(ctx, userID)
	if errors.Is(err, common.ErrInsufficientBalance) {
		rec, perr := h.svc.Profile(ctx, userID)
		if perr != nil {
			log.WithError(perr).Error("ошибка чтения записи для !prestige")
			h.reply(msg, "Something went wrong, try again later.")
			return
		}
		h.reply(msg, fmt.Sprintf("🌟 Prestige %d costs %s. You have %s.",
			rec.Prestige+1, common.FormatCoins(PrestigeCost(rec.Prestige)),
			common.FormatCoins(rec.Money)))
		return
	}
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("ошибка престижа")
		h.reply(msg, "Something went wrong, try again later.")
		return
	}

	h.reply(msg, fmt.Sprintf(
		"🌟 Prestige %d! Progress reset. Luck +20%% (now +%.0f%%), money boost x%.2f.",
		res.NewPrestige, res.NewLuck, res.NewMoneyBoost))
}

// OnPlainMessage начисляет пассивный опыт и поздравляет с новым уровнем.
func (h *Handler) OnPlainMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := common.UserKey(msg.From.ID)

	level, leveled, err := h.svc.OnMessage(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("ошибка начисления пассивного опыта")
		return
	}
	if leveled {
		h.reply(msg, fmt.Sprintf("🎉 %s reached level %d!", common.DisplayName(msg.From), level))
	}
}
