// handlers.go — команда !mine и кнопка «Mine Again».
package mining

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/economy-bot/internal/common"
)

// Время жизни кнопки «Mine Again».
const mineAgainLifetime = 5 * time.Minute

const cbMineAgain = "mine:again:"

// Handler связывает !mine с сервисом добычи.
type Handler struct {
	svc    *Service
	sender common.Sender

	mu      sync.Mutex
	buttons map[string]time.Time // id кнопки → срок годности
}

// NewHandler создаёт обработчик добычи.
func NewHandler(svc *Service, sender common.Sender) *Handler {
	return &Handler{svc: svc, sender: sender, buttons: map[string]time.Time{}}
}

// HandleMine — команда !mine.
func (h *Handler) HandleMine(ctx context.Context, msg *tgbotapi.Message, _ []string) {
	userID := common.UserKey(msg.From.ID)

	res, err := h.svc.Mine(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("ошибка добычи")
		if _, serr := h.sender.Send(common.ReplyTo(msg, "Something went wrong, try again later.")); serr != nil {
			log.WithError(serr).Warn("не удалось отправить ответ")
		}
		return
	}

	reply := common.ReplyTo(msg, renderResult(res))
	reply.ReplyMarkup = h.newMineAgainKeyboard()
	if _, err := h.sender.Send(reply); err != nil {
		log.WithError(err).Warn("не удалось отправить ответ")
	}
}

// HandleCallback обрабатывает кнопку «Mine Again». Возвращает false,
// если callback не про добычу.
func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) bool {
	if !strings.HasPrefix(cq.Data, cbMineAgain) {
		return false
	}
	id := strings.TrimPrefix(cq.Data, cbMineAgain)

	answer := func(text string) {
		if _, err := h.sender.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
			log.WithError(err).Warn("не удалось ответить на callback")
		}
	}

	h.mu.Lock()
	deadline, ok := h.buttons[id]
	h.mu.Unlock()
	if !ok || time.Now().After(deadline) {
		answer("This button has expired. Use !mine.")
		return true
	}

	// Кнопка общая: копает нажавший, не автор исходной команды.
	userID := common.UserKey(cq.From.ID)
	res, err := h.svc.Mine(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("ошибка добычи")
		answer("Something went wrong, try again later.")
		return true
	}
	answer("")

	out := tgbotapi.NewMessage(cq.Message.Chat.ID, renderResult(res))
	out.ReplyMarkup = h.newMineAgainKeyboard()
	if _, err := h.sender.Send(out); err != nil {
		log.WithError(err).Warn("не удалось отправить ответ")
	}
	return true
}

func (h *Handler) newMineAgainKeyboard() tgbotapi.InlineKeyboardMarkup {
	id := uuid.NewString()
	h.mu.Lock()
	h.buttons[id] = time.Now().Add(mineAgainLifetime)
	h.mu.Unlock()
	time.AfterFunc(mineAgainLifetime, func() {
		h.mu.Lock()
		delete(h.buttons, id)
		h.mu.Unlock()
	})
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⛏️ Mine Again", cbMineAgain+id),
		),
	)
}

func renderResult(res *Result) string {
	var b strings.Builder
	b.WriteString("⛏️ Mining Result\n")
	b.WriteString(res.Flavor)
	switch res.Kind {
	case KindCoins:
		fmt.Fprintf(&b, " Found %s!", common.FormatCoins(res.Coins))
	case KindItem:
		fmt.Fprintf(&b, " You discovered %s (%s, %s)! Owned: %d",
			res.Item, res.Rarity, common.FormatCoins(res.Value), res.Quantity)
	case KindBox:
		if res.Box.Item != "" {
			fmt.Fprintf(&b, "\n🎁 Box contents: %s (%s, %s). Owned: %d",
				res.Box.Item, res.Box.Rarity, common.FormatCoins(res.Box.Value), res.Box.Quantity)
		} else {
			fmt.Fprintf(&b, "\n💰 Box contents: %s!", common.FormatCoins(res.Box.Coins))
		}
	}
	return b.String()
}
