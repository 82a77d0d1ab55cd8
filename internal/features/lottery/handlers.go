// handlers.go — команда !lottery <n1> <n2> <n3> <n4>.
package lottery

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

// Handler связывает команду !lottery с сервисом.
type Handler struct {
	svc    *Service
	sender common.Sender
}

// NewHandler создаёт обработчик лотереи.
func NewHandler(svc *Service, sender common.Sender) *Handler {
	return &Handler{svc: svc, sender: sender}
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	if _, err := h.sender.Send(common.ReplyTo(msg, text)); err != nil {
		log.WithError(err).Warn("не удалось отправить ответ")
	}
}

// HandleLottery — команда !lottery <n1> <n2> <n3> <n4>,
// а также !lottery stats — самые частые выигрышные номера.
func (h *Handler) HandleLottery(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) == 1 && strings.EqualFold(args[0], "stats") {
		h.handleStats(msg)
		return
	}
	if len(args) != DrawSize {
		h.reply(msg, "Usage: !lottery <n1> <n2> <n3> <n4> (numbers 1-100), or !lottery stats")
		return
	}
	guesses := make([]int, 0, DrawSize)
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			h.reply(msg, "Please enter numbers between 1 and 100.")
			return
		}
		guesses = append(guesses, n)
	}

	userID := common.UserKey(msg.From.ID)
	res, err := h.svc.Play(ctx, userID, guesses)
	switch {
	case errors.Is(err, common.ErrInvalidChoice):
		h.reply(msg, "Please enter numbers between 1 and 100.")
		return
	case err != nil:
		log.WithError(err).Error("ошибка розыгрыша лотереи")
		h.reply(msg, "Something went wrong, try again later.")
		return
	}

	head := "😢 No numbers matched!"
	switch {
	case res.Matches == DrawSize:
		head = "🎉 JACKPOT! All numbers correct!"
	case res.Matches > 0:
		head = fmt.Sprintf("🎯 %d number(s) correct!", res.Matches)
	}

	text := fmt.Sprintf("🎰 Lottery Results\n%s\nYour numbers: %v\nWinning numbers: %v\nCorrect: %d/%d",
		head, res.Guesses, res.Drawn, res.Matches, DrawSize)
	if res.Won > 0 {
		text += fmt.Sprintf("\n💰 Coins won: %s", common.FormatCoinsSigned(res.Credited))
	}
	h.reply(msg, text)
}

// handleStats показывает самые частые выигрышные номера за всю историю.
func (h *Handler) handleStats(msg *tgbotapi.Message) {
	top, err := h.svc.HotNumbers(10)
	if err != nil {
		log.WithError(err).Error("ошибка чтения истории лотереи")
		h.reply(msg, "Something went wrong, try again later.")
		return
	}
	if len(top) == 0 {
		h.reply(msg, "🎰 No lottery draws yet. Be the first: !lottery <n1> <n2> <n3> <n4>")
		return
	}
	h.reply(msg, "🎰 Hottest lottery numbers:\n"+strings.Join(top, "\n"))
}
